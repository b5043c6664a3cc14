package repository

import (
	"context"
	"database/sql"
	"fmt"

	"match-workers/internal/models"
)

type RecipientStore struct {
	db DBTX
}

func NewRecipientStore(db DBTX) *RecipientStore {
	return &RecipientStore{db: db}
}

// Recipient loads a recruiter's contact details.
func (s *RecipientStore) Recipient(ctx context.Context, id string) (models.Recipient, error) {
	var (
		r            models.Recipient
		email, phone sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone
		FROM recruiters
		WHERE id = $1`, id).Scan(&r.ID, &r.Name, &email, &phone)
	if err != nil {
		return r, fmt.Errorf("recruiter %s: %w", id, notFound(err))
	}
	r.Email = email.String
	r.Phone = phone.String
	return r, nil
}
