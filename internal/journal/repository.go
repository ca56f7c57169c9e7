package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// AddEntry persists a new journal entry and returns its id.
func (r *Repository) AddEntry(ctx context.Context, userID int64, rawText, inputType string, wordCount int) (int64, error) {
	query := `
		INSERT INTO journal_entries (user_id, created_at, raw_text, input_type, word_count)
		VALUES ($1, NOW(), $2, $3, $4)
		RETURNING entry_id
	`
	var entryID int64
	err := r.db.QueryRowContext(ctx, query, userID, rawText, inputType, wordCount).Scan(&entryID)
	if err != nil {
		return 0, fmt.Errorf("failed to add journal entry for user %d: %w", userID, err)
	}
	return entryID, nil
}

// UpdateAnalysis writes the provided analysis fields; nil fields stay as they
// are, so categorization and analysis can land in separate passes.
func (r *Repository) UpdateAnalysis(ctx context.Context, entryID int64, upd AnalysisUpdate) error {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("sentiment", upd.Sentiment)
	add("topics", upd.Topics)
	add("categories", upd.Categories)
	add("ai_analysis_text", upd.AnalysisText)
	add("dot_code", upd.DotCode)

	if len(sets) == 0 {
		return nil
	}

	args = append(args, entryID)
	query := fmt.Sprintf(`UPDATE journal_entries SET %s WHERE entry_id = $%d`,
		strings.Join(sets, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update analysis for entry %d: %w", entryID, err)
	}
	return nil
}

// RecentEntries returns the user's latest entries, most recent first.
func (r *Repository) RecentEntries(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	query := `
		SELECT entry_id, user_id, created_at, raw_text, input_type, word_count,
		       sentiment, topics, categories, ai_analysis_text, dot_code
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent entries for user %d: %w", userID, err)
	}
	return entries, nil
}
