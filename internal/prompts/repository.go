package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Prompt struct {
	ID        int64          `db:"prompt_id"`
	Text      string         `db:"prompt_text"`
	Category  sql.NullString `db:"category"`
	DateAdded time.Time      `db:"date_added"`
}

var starterPrompts = []struct {
	text     string
	category string
}{
	{"What are you grateful for today?", "Reflection"},
	{"Describe a small act of kindness you witnessed or performed.", "Kindness"},
	{"What is one thing you learned recently?", "Learning"},
	{"How are you feeling right now, and why?", "Emotion"},
	{"What is a challenge you're currently facing?", "Challenge"},
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Random picks one prompt uniformly; nil when the table is empty.
func (r *Repository) Random(ctx context.Context) (*Prompt, error) {
	query := `
		SELECT prompt_id, prompt_text, category, date_added
		FROM daily_prompts
		ORDER BY RANDOM()
		LIMIT 1
	`
	var p Prompt
	err := r.db.GetContext(ctx, &p, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get random prompt: %w", err)
	}
	return &p, nil
}

func (r *Repository) Add(ctx context.Context, text, category string) error {
	query := `
		INSERT INTO daily_prompts (prompt_text, category)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (prompt_text) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, text, category); err != nil {
		return fmt.Errorf("failed to add daily prompt: %w", err)
	}
	return nil
}

// SeedStarterPrompts inserts the initial prompt set when the table is empty.
func (r *Repository) SeedStarterPrompts(ctx context.Context) error {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM daily_prompts`); err != nil {
		return fmt.Errorf("failed to count daily prompts: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, p := range starterPrompts {
		if err := r.Add(ctx, p.text, p.category); err != nil {
			return err
		}
	}
	logrus.Infof("Seeded %d starter daily prompts", len(starterPrompts))
	return nil
}
