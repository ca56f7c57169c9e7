// Package feedback stores user-submitted feedback messages. Write-only: there
// is no read or moderation path in the bot itself.
package feedback

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Add(ctx context.Context, userID int64, text string) error {
	query := `INSERT INTO feedback (user_id, created_at, feedback_text) VALUES ($1, NOW(), $2)`
	if _, err := r.db.ExecContext(ctx, query, userID, text); err != nil {
		return fmt.Errorf("failed to add feedback from user %d: %w", userID, err)
	}
	return nil
}
