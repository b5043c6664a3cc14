package database

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-workers/internal/common/config"
)

// ==========================
// Postgres
// ==========================

func TestWithTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM tech_domains").WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
			_, err := tx.Exec("DELETE FROM tech_domains")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = WithTx(context.Background(), db, func(*sql.Tx) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewPostgres_Lazy(t *testing.T) {
	c, err := NewPostgres(config.PostgresConfig{Host: "127.0.0.1", Port: 1, Database: "x", User: "u", SSLMode: "disable", MaxConnections: 2, MaxIdle: 1})
	require.NoError(t, err)
	assert.NotNil(t, c.DB)
	assert.NoError(t, c.Close())
}

// ==========================
// Redis
// ==========================

func TestJSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	type entry struct {
		Overall int    `json:"overall"`
		Policy  string `json:"policy"`
	}
	require.NoError(t, SetJSON(ctx, c.Client, "match:k", entry{Overall: 91, Policy: "hot"}, time.Minute))

	var got entry
	require.NoError(t, GetJSON(ctx, c.Client, "match:k", &got))
	assert.Equal(t, entry{Overall: 91, Policy: "hot"}, got)
	assert.Equal(t, time.Minute, mr.TTL("match:k"))

	assert.ErrorIs(t, GetJSON(ctx, c.Client, "match:absent", &got), ErrCacheMiss)

	mr.Set("match:garbage", "{")
	assert.Error(t, GetJSON(ctx, c.Client, "match:garbage", &got))
}

func TestGetJSON_ConnectionError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer rdb.Close()

	var dst map[string]interface{}
	err := GetJSON(context.Background(), rdb, "k", &dst)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

// ==========================
// Elasticsearch
// ==========================

func fakeElasticsearch(t *testing.T, indexExists bool) (*httptest.Server, *int32) {
	var creates int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			if indexExists {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case http.MethodPut:
			atomic.AddInt32(&creates, 1)
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &creates
}

func TestEnsureIndex(t *testing.T) {
	tests := []struct {
		name        string
		exists      bool
		wantCreates int32
	}{
		{"creates missing index", false, 1},
		{"leaves existing index", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, creates := fakeElasticsearch(t, tt.exists)
			c, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
			require.NoError(t, err)

			err = EnsureIndex(context.Background(), c.Client, "matches", `{"mappings":{}}`)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantCreates, atomic.LoadInt32(creates))
		})
	}
}
