package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetUser(ctx context.Context, userID int64) (*User, error) {
	query := `
		SELECT user_id, telegram_username, display_name, first_seen, last_interaction, preferences
		FROM users
		WHERE user_id = $1
	`
	var user User
	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return &user, nil
}

// Upsert inserts the user or refreshes username and last_interaction. The
// display name is only overwritten when a non-empty value is supplied.
func (r *Repository) Upsert(ctx context.Context, userID int64, telegramUsername, displayName string) error {
	query := `
		INSERT INTO users (user_id, telegram_username, display_name, first_seen, last_interaction)
		VALUES ($1, $2, NULLIF($3, ''), NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			telegram_username = EXCLUDED.telegram_username,
			display_name = COALESCE(EXCLUDED.display_name, users.display_name),
			last_interaction = EXCLUDED.last_interaction
	`
	if _, err := r.db.ExecContext(ctx, query, userID, telegramUsername, displayName); err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}
	return nil
}

// UpdatePreferences optionally replaces the display name and merges the given
// keys into the preferences JSON, preserving keys it does not mention.
func (r *Repository) UpdatePreferences(ctx context.Context, userID int64, displayName *string, merge map[string]interface{}) error {
	if displayName != nil {
		query := `UPDATE users SET display_name = $1, last_interaction = NOW() WHERE user_id = $2`
		if _, err := r.db.ExecContext(ctx, query, *displayName, userID); err != nil {
			return fmt.Errorf("failed to update display name for user %d: %w", userID, err)
		}
	}

	if len(merge) == 0 {
		return nil
	}

	var raw sql.NullString
	err := r.db.GetContext(ctx, &raw, `SELECT preferences FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to load preferences for user %d: %w", userID, err)
	}

	current := map[string]interface{}{}
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), &current); err != nil {
			return fmt.Errorf("failed to parse preferences for user %d: %w", userID, err)
		}
	}
	for k, v := range merge {
		current[k] = v
	}

	encoded, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode preferences for user %d: %w", userID, err)
	}

	query := `UPDATE users SET preferences = $1, last_interaction = NOW() WHERE user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, string(encoded), userID); err != nil {
		return fmt.Errorf("failed to update preferences for user %d: %w", userID, err)
	}
	return nil
}

// PromptCandidate is a user row slimmed down for the daily prompt scan.
type PromptCandidate struct {
	UserID      int64          `db:"user_id"`
	Preferences sql.NullString `db:"preferences"`
}

func (r *Repository) UsersWithPromptsEnabled(ctx context.Context) ([]PromptCandidate, error) {
	query := `
		SELECT user_id, preferences
		FROM users
		WHERE preferences IS NOT NULL
		AND (preferences::jsonb ->> 'daily_prompt_enabled')::boolean IS TRUE
	`
	var candidates []PromptCandidate
	if err := r.db.SelectContext(ctx, &candidates, query); err != nil {
		return nil, fmt.Errorf("failed to list users with prompts enabled: %w", err)
	}
	return candidates, nil
}
