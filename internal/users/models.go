package users

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

type User struct {
	ID               int64          `db:"user_id"`
	TelegramUsername sql.NullString `db:"telegram_username"`
	DisplayName      sql.NullString `db:"display_name"`
	FirstSeen        time.Time      `db:"first_seen"`
	LastInteraction  *time.Time     `db:"last_interaction"`
	Preferences      sql.NullString `db:"preferences"`
}

// Name returns the display name, falling back to the Telegram username and
// then to the supplied fallback.
func (u *User) Name(fallback string) string {
	if u.DisplayName.Valid && u.DisplayName.String != "" {
		return u.DisplayName.String
	}
	if u.TelegramUsername.Valid && u.TelegramUsername.String != "" {
		return u.TelegramUsername.String
	}
	return fallback
}

// Preferences is the typed view of the JSON preferences blob. Unknown keys are
// preserved by the repository's merge update, not by this struct.
type Preferences struct {
	DailyPromptEnabled  bool    `json:"daily_prompt_enabled"`
	PreferredPromptTime string  `json:"preferred_prompt_time"`
	LastPromptSentDate  *string `json:"last_prompt_sent_date"`
}

// ParsePreferences decodes a preferences blob, tolerating empty and malformed
// input (both yield zero-value preferences).
func ParsePreferences(raw string) Preferences {
	var prefs Preferences
	if raw == "" {
		return prefs
	}
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		logrus.Warnf("Could not parse preferences JSON: %v", err)
		return Preferences{}
	}
	return prefs
}

func (u *User) Prefs() Preferences {
	if !u.Preferences.Valid {
		return Preferences{}
	}
	return ParsePreferences(u.Preferences.String)
}
