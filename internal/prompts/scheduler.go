package prompts

import (
	"context"
	"time"

	"journalbot/internal/users"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultPromptTime = "09:00"

// Sender delivers a plain text message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Directory lists opted-in users and records deliveries.
type Directory interface {
	UsersWithPromptsEnabled(ctx context.Context) ([]users.PromptCandidate, error)
	MarkPromptSent(ctx context.Context, userID int64, date string) error
}

// Source supplies the prompt to send.
type Source interface {
	Random(ctx context.Context) (*Prompt, error)
}

// Scheduler scans opted-in users once an hour and sends each at most one
// journal prompt per UTC day, after the user's preferred time has passed.
type Scheduler struct {
	directory Directory
	source    Source
	sender    Sender
	cron      *cron.Cron
	now       func() time.Time
}

func NewScheduler(directory Directory, source Source, sender Sender) *Scheduler {
	return &Scheduler{
		directory: directory,
		source:    source,
		sender:    sender,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		now:       time.Now,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", func() {
		s.Scan(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	logrus.Info("Daily prompt scheduler started, checking hourly")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Scan runs one pass over the opted-in users. Failures are logged per user
// and never stop the scan.
func (s *Scheduler) Scan(ctx context.Context) {
	candidates, err := s.directory.UsersWithPromptsEnabled(ctx)
	if err != nil {
		logrus.Errorf("Daily prompt scan failed to list users: %v", err)
		return
	}
	if len(candidates) == 0 {
		logrus.Info("Daily prompt scan: no users opted in")
		return
	}

	now := s.now().UTC()
	today := now.Format("2006-01-02")
	for _, candidate := range candidates {
		s.promptUser(ctx, candidate, now, today)
	}
}

func (s *Scheduler) promptUser(ctx context.Context, candidate users.PromptCandidate, now time.Time, today string) {
	prefs := users.ParsePreferences(candidate.Preferences.String)
	if !prefs.DailyPromptEnabled {
		return
	}
	if prefs.LastPromptSentDate != nil && *prefs.LastPromptSentDate == today {
		return
	}

	preferred := prefs.PreferredPromptTime
	if preferred == "" {
		preferred = defaultPromptTime
	}
	preferredTime, err := time.Parse("15:04", preferred)
	if err != nil {
		logrus.Warnf("Invalid preferred_prompt_time %q for user %d, using %s UTC", preferred, candidate.UserID, defaultPromptTime)
		preferredTime, _ = time.Parse("15:04", defaultPromptTime)
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	dueMinutes := preferredTime.Hour()*60 + preferredTime.Minute()
	if nowMinutes < dueMinutes {
		return
	}

	prompt, err := s.source.Random(ctx)
	if err != nil {
		logrus.Errorf("Failed to pick a daily prompt for user %d: %v", candidate.UserID, err)
		return
	}
	if prompt == nil {
		logrus.Warn("No daily prompts available in the database to send")
		return
	}

	text := "✨ Daily Journal Prompt ✨\n\n" + prompt.Text
	if err := s.sender.SendMessage(ctx, candidate.UserID, text); err != nil {
		logrus.Errorf("Failed to send daily prompt to user %d: %v", candidate.UserID, err)
		return
	}
	if err := s.directory.MarkPromptSent(ctx, candidate.UserID, today); err != nil {
		logrus.Errorf("Failed to record daily prompt delivery for user %d: %v", candidate.UserID, err)
		return
	}
	logrus.Infof("Sent daily prompt to user %d", candidate.UserID)
}
