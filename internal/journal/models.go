package journal

import (
	"database/sql"
	"time"
)

// Categories is the fixed vocabulary offered to the model when it
// categorizes an entry.
var Categories = []string{
	"Emotional", "Family", "Grief", "Workplace", "Technology", "AI",
	"Spouse", "Kid", "Personal Reflection", "Health", "Finance",
	"Social", "Hobby", "Other",
}

type Entry struct {
	ID           int64          `db:"entry_id"`
	UserID       int64          `db:"user_id"`
	CreatedAt    time.Time      `db:"created_at"`
	RawText      string         `db:"raw_text"`
	InputType    string         `db:"input_type"`
	WordCount    int            `db:"word_count"`
	Sentiment    sql.NullString `db:"sentiment"`
	Topics       sql.NullString `db:"topics"`
	Categories   sql.NullString `db:"categories"`
	AnalysisText sql.NullString `db:"ai_analysis_text"`
	DotCode      sql.NullString `db:"dot_code"`
}

// AnalysisUpdate carries the optional analysis fields written back to an
// entry. Nil fields are left untouched.
type AnalysisUpdate struct {
	Sentiment    *string
	Topics       *string
	Categories   *string
	AnalysisText *string
	DotCode      *string
}
