package users

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrInvalidDisplayName = errors.New("display name must be between 1 and 50 characters")

const defaultPromptTime = "09:00"

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EnsureUser upserts the user from the inbound update and returns the stored
// row. Called on every interaction, so last_interaction stays fresh.
func (s *Service) EnsureUser(ctx context.Context, userID int64, telegramUsername, firstName string) (*User, error) {
	displayName := ""
	existing, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		displayName = firstName
		if displayName == "" {
			displayName = telegramUsername
		}
	}

	if err := s.repo.Upsert(ctx, userID, telegramUsername, displayName); err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, userID)
}

func (s *Service) SetDisplayName(ctx context.Context, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return ErrInvalidDisplayName
	}
	return s.repo.UpdatePreferences(ctx, userID, &name, nil)
}

func (s *Service) EnableDailyPrompts(ctx context.Context, userID int64) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	merge := map[string]interface{}{
		"daily_prompt_enabled":  true,
		"last_prompt_sent_date": nil,
	}
	if user == nil || user.Prefs().PreferredPromptTime == "" {
		merge["preferred_prompt_time"] = defaultPromptTime
	}

	if err := s.repo.UpdatePreferences(ctx, userID, nil, merge); err != nil {
		return err
	}
	logrus.Infof("User %d enabled daily prompts", userID)
	return nil
}

func (s *Service) DisableDailyPrompts(ctx context.Context, userID int64) error {
	merge := map[string]interface{}{"daily_prompt_enabled": false}
	if err := s.repo.UpdatePreferences(ctx, userID, nil, merge); err != nil {
		return err
	}
	logrus.Infof("User %d disabled daily prompts", userID)
	return nil
}

// UsersWithPromptsEnabled lists candidates for the daily prompt scan.
func (s *Service) UsersWithPromptsEnabled(ctx context.Context) ([]PromptCandidate, error) {
	return s.repo.UsersWithPromptsEnabled(ctx)
}

// MarkPromptSent records the UTC date of the last delivered daily prompt.
func (s *Service) MarkPromptSent(ctx context.Context, userID int64, date string) error {
	return s.repo.UpdatePreferences(ctx, userID, nil, map[string]interface{}{
		"last_prompt_sent_date": date,
	})
}
