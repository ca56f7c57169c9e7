package db

import (
	"fmt"
	"journalbot/pkg/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.Config) (*sqlx.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)

	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logrus.Info("Connected to PostgreSQL")
	return db, nil
}

// EnsureSchema creates the tables the bot needs if they do not exist yet.
func EnsureSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			telegram_username TEXT,
			display_name TEXT,
			first_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_interaction TIMESTAMPTZ,
			preferences TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS journal_entries (
			entry_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users (user_id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			raw_text TEXT NOT NULL,
			input_type TEXT,
			word_count INTEGER,
			sentiment TEXT,
			topics TEXT,
			categories TEXT,
			ai_analysis_text TEXT,
			dot_code TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			feedback_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users (user_id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			feedback_text TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS daily_prompts (
			prompt_id BIGSERIAL PRIMARY KEY,
			prompt_text TEXT NOT NULL UNIQUE,
			category TEXT,
			date_added TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	logrus.Info("Database tables checked/created")
	return nil
}
