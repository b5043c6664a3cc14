package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"match-workers/internal/common/database"
	"match-workers/internal/matching"
	"match-workers/internal/models"
)

const domainColumns = `key, display_names, primary_skills, secondary_skills, title_keywords,
		       transferable_to, incompatible_with, weight, active, updated_at`

// DomainStore reads and replaces the tech_domains table.
type DomainStore struct {
	db *sql.DB
}

func NewDomainStore(db *sql.DB) *DomainStore {
	return &DomainStore{db: db}
}

// Snapshot loads every domain row, active or not. The version is derived
// from the newest updated_at and the row count so any edit changes it.
func (s *DomainStore) Snapshot(ctx context.Context) (models.DomainRegistrySnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+domainColumns+`
		FROM tech_domains
		ORDER BY key`)
	if err != nil {
		return models.DomainRegistrySnapshot{}, fmt.Errorf("query tech_domains: %w", err)
	}
	defer rows.Close()

	var (
		domains []models.TechDomain
		newest  time.Time
	)
	for rows.Next() {
		var (
			d         models.TechDomain
			updatedAt time.Time
		)
		if err := rows.Scan(
			&d.Key,
			pq.Array(&d.DisplayNames),
			pq.Array(&d.PrimarySkills),
			pq.Array(&d.SecondarySkills),
			pq.Array(&d.TitleKeywords),
			pq.Array(&d.TransferableTo),
			pq.Array(&d.IncompatibleWith),
			&d.Weight,
			&d.Active,
			&updatedAt,
		); err != nil {
			return models.DomainRegistrySnapshot{}, fmt.Errorf("scan tech_domains: %w", err)
		}
		if updatedAt.After(newest) {
			newest = updatedAt
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return models.DomainRegistrySnapshot{}, err
	}

	return models.DomainRegistrySnapshot{
		Version: fmt.Sprintf("pg-%d-%d", newest.UTC().UnixMilli(), len(domains)),
		Domains: domains,
	}, nil
}

// Registry builds the evaluation registry from the current table contents.
func (s *DomainStore) Registry(ctx context.Context) (*matching.Registry, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return matching.NewRegistry(snap), nil
}

// ReplaceAll swaps the table contents for domains in one transaction.
func (s *DomainStore) ReplaceAll(ctx context.Context, domains []models.TechDomain) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return replaceDomains(ctx, tx, domains)
	})
}

func replaceDomains(ctx context.Context, tx DBTX, domains []models.TechDomain) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tech_domains`); err != nil {
		return fmt.Errorf("clear tech_domains: %w", err)
	}
	for _, d := range domains {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tech_domains (`+domainColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
			d.Key,
			pq.Array(d.DisplayNames),
			pq.Array(d.PrimarySkills),
			pq.Array(d.SecondarySkills),
			pq.Array(d.TitleKeywords),
			pq.Array(d.TransferableTo),
			pq.Array(d.IncompatibleWith),
			d.Weight,
			d.Active,
		); err != nil {
			return fmt.Errorf("insert domain %s: %w", d.Key, err)
		}
	}
	return nil
}
