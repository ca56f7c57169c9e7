package users

import (
	"database/sql"
	"testing"
)

func TestParsePreferences(t *testing.T) {
	yesterday := "2025-03-01"

	tests := []struct {
		name string
		raw  string
		want Preferences
	}{
		{
			name: "empty",
			raw:  "",
			want: Preferences{},
		},
		{
			name: "malformed falls back to zero",
			raw:  "{not json",
			want: Preferences{},
		},
		{
			name: "full set",
			raw:  `{"daily_prompt_enabled":true,"preferred_prompt_time":"07:30","last_prompt_sent_date":"2025-03-01"}`,
			want: Preferences{DailyPromptEnabled: true, PreferredPromptTime: "07:30", LastPromptSentDate: &yesterday},
		},
		{
			name: "null last sent date",
			raw:  `{"daily_prompt_enabled":true,"last_prompt_sent_date":null}`,
			want: Preferences{DailyPromptEnabled: true},
		},
		{
			name: "unknown keys ignored",
			raw:  `{"daily_prompt_enabled":false,"future_key":42}`,
			want: Preferences{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePreferences(tt.raw)
			if got.DailyPromptEnabled != tt.want.DailyPromptEnabled {
				t.Errorf("DailyPromptEnabled = %v, want %v", got.DailyPromptEnabled, tt.want.DailyPromptEnabled)
			}
			if got.PreferredPromptTime != tt.want.PreferredPromptTime {
				t.Errorf("PreferredPromptTime = %q, want %q", got.PreferredPromptTime, tt.want.PreferredPromptTime)
			}
			gotDate, wantDate := "", ""
			if got.LastPromptSentDate != nil {
				gotDate = *got.LastPromptSentDate
			}
			if tt.want.LastPromptSentDate != nil {
				wantDate = *tt.want.LastPromptSentDate
			}
			if gotDate != wantDate {
				t.Errorf("LastPromptSentDate = %q, want %q", gotDate, wantDate)
			}
		})
	}
}

func TestUserName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		fallback string
		want     string
	}{
		{
			name:     "display name wins",
			user:     User{DisplayName: sql.NullString{String: "Alex", Valid: true}, TelegramUsername: sql.NullString{String: "alex99", Valid: true}},
			fallback: "12345",
			want:     "Alex",
		},
		{
			name:     "falls back to username",
			user:     User{TelegramUsername: sql.NullString{String: "alex99", Valid: true}},
			fallback: "12345",
			want:     "alex99",
		},
		{
			name:     "falls back to id string",
			user:     User{},
			fallback: "12345",
			want:     "12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.Name(tt.fallback); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}
