package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Usage is the durable shape of the token counters. Session is reset every
// process start; Daily rolls over at the UTC day boundary.
type Usage struct {
	Total   int        `json:"total"`
	Daily   DailyUsage `json:"daily"`
	Session int        `json:"session"`
}

type DailyUsage struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Tracker owns the token usage file. Every increment is a load-modify-store
// cycle under the mutex so concurrent handlers never lose an update.
type Tracker struct {
	mu   sync.Mutex
	path string
	now  func() time.Time

	session int
}

func NewTracker(path string) (*Tracker, error) {
	t := &Tracker{
		path: path,
		now:  time.Now,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.load()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token tracker: %w", err)
	}
	data.Session = 0
	if err := t.save(data); err != nil {
		return nil, fmt.Errorf("failed to initialize token tracker: %w", err)
	}

	logrus.Infof("Token tracker initialized (all-time total: %d)", data.Total)
	return t, nil
}

// Add records prompt and completion tokens from one model call.
func (t *Tracker) Add(promptTokens, completionTokens int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	increment := promptTokens + completionTokens
	today := t.now().UTC().Format("2006-01-02")

	data, err := t.load()
	if err != nil {
		return err
	}

	if data.Daily.Date != today {
		data.Daily = DailyUsage{Date: today}
	}
	data.Total += increment
	data.Daily.Count += increment
	t.session += increment
	data.Session = t.session

	if err := t.save(data); err != nil {
		return err
	}

	logrus.Infof("Tokens used - prompt: %d, completion: %d, session: %d", promptTokens, completionTokens, t.session)
	return nil
}

// Snapshot returns the current counters with the daily window rolled over if
// the UTC day has changed since the last increment.
func (t *Tracker) Snapshot() (Usage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.load()
	if err != nil {
		return Usage{}, err
	}

	today := t.now().UTC().Format("2006-01-02")
	if data.Daily.Date != today {
		data.Daily = DailyUsage{Date: today}
		if err := t.save(data); err != nil {
			return Usage{}, err
		}
	}
	data.Session = t.session
	return data, nil
}

func (t *Tracker) load() (Usage, error) {
	raw, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Usage{}, nil
		}
		return Usage{}, fmt.Errorf("failed to read token usage file: %w", err)
	}

	var data Usage
	if err := json.Unmarshal(raw, &data); err != nil {
		logrus.Errorf("Corrupt token usage file, starting from zero: %v", err)
		return Usage{}, nil
	}
	return data, nil
}

func (t *Tracker) save(data Usage) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode token usage: %w", err)
	}
	if err := os.WriteFile(t.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write token usage file: %w", err)
	}
	return nil
}
