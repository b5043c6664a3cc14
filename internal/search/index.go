package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"match-workers/internal/common/database"
	"match-workers/internal/common/logger"
	"match-workers/internal/models"
)

// MatchIndex writes match documents.
type MatchIndex struct {
	client  *elasticsearch.Client
	index   string
	refresh bool
	now     func() time.Time
	logger  logger.Logger
}

func NewMatchIndex(client *elasticsearch.Client, index string, refresh bool, log logger.Logger) *MatchIndex {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &MatchIndex{client: client, index: index, refresh: refresh, now: time.Now, logger: log}
}

func (m *MatchIndex) Name() string { return m.index }

// Ensure creates the index with Mapping if it does not exist yet.
func (m *MatchIndex) Ensure(ctx context.Context) error {
	return database.EnsureIndex(ctx, m.client, m.index, Mapping)
}

// IndexStats reports the outcome of one bulk write.
type IndexStats struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// IndexResults upserts one document per result. Item-level rejections are
// counted in the stats; only a failed request is an error.
func (m *MatchIndex) IndexResults(ctx context.Context, batchID, registryVersion string, results []models.MatchResult) (IndexStats, error) {
	var stats IndexStats
	if len(results) == 0 {
		return stats, nil
	}

	at := m.now()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range results {
		meta := map[string]map[string]string{
			"index": {"_index": m.index, "_id": DocumentID(r.CandidateID, r.JobID, r.Mode)},
		}
		if err := enc.Encode(meta); err != nil {
			return stats, fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(NewDocument(r, batchID, registryVersion, at)); err != nil {
			return stats, fmt.Errorf("encode match document: %w", err)
		}
	}

	opts := []func(*esapi.BulkRequest){
		m.client.Bulk.WithContext(ctx),
		m.client.Bulk.WithIndex(m.index),
	}
	if m.refresh {
		opts = append(opts, m.client.Bulk.WithRefresh("wait_for"))
	}

	res, err := m.client.Bulk(&buf, opts...)
	if err != nil {
		return stats, fmt.Errorf("bulk index %s: %w", m.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return stats, fmt.Errorf("bulk index %s: %s", m.index, res.String())
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return stats, fmt.Errorf("decode bulk response: %w", err)
	}

	for _, item := range br.Items {
		for _, op := range item {
			if op.Error != nil || op.Status > 299 {
				stats.Failed++
				if op.Error != nil {
					stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %s", op.ID, op.Error.Reason))
				}
				continue
			}
			stats.Indexed++
		}
	}

	if stats.Failed > 0 {
		m.logger.Warn("Some match documents were rejected", map[string]interface{}{
			"index":   m.index,
			"batchId": batchID,
			"failed":  stats.Failed,
			"indexed": stats.Indexed,
		})
	}
	return stats, nil
}
