package tokens

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token_usage.json")
	tracker, err := NewTracker(path)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	return tracker
}

func TestAddAccumulates(t *testing.T) {
	tracker := newTestTracker(t)

	increments := [][2]int{{10, 5}, {3, 2}, {0, 1}}
	for _, inc := range increments {
		if err := tracker.Add(inc[0], inc[1]); err != nil {
			t.Fatalf("Add(%d, %d) failed: %v", inc[0], inc[1], err)
		}
	}

	usage, err := tracker.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if usage.Session != 21 {
		t.Errorf("session = %d, want 21", usage.Session)
	}
	if usage.Daily.Count != 21 {
		t.Errorf("daily count = %d, want 21", usage.Daily.Count)
	}
	if usage.Total != 21 {
		t.Errorf("total = %d, want 21", usage.Total)
	}
}

func TestAddRollsOverDailyAtUTCDayBoundary(t *testing.T) {
	tracker := newTestTracker(t)

	day1 := time.Date(2025, 3, 1, 23, 50, 0, 0, time.UTC)
	tracker.now = func() time.Time { return day1 }

	if err := tracker.Add(100, 50); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	day2 := day1.Add(20 * time.Minute)
	tracker.now = func() time.Time { return day2 }

	if err := tracker.Add(10, 0); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	usage, err := tracker.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if usage.Daily.Date != "2025-03-02" {
		t.Errorf("daily date = %q, want 2025-03-02", usage.Daily.Date)
	}
	if usage.Daily.Count != 10 {
		t.Errorf("daily count = %d, want 10", usage.Daily.Count)
	}
	if usage.Total != 160 {
		t.Errorf("total = %d, want 160", usage.Total)
	}
	if usage.Session != 160 {
		t.Errorf("session = %d, want 160", usage.Session)
	}
}

func TestSessionResetsButTotalPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token_usage.json")

	first, err := NewTracker(path)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	if err := first.Add(7, 3); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	second, err := NewTracker(path)
	if err != nil {
		t.Fatalf("NewTracker (restart) failed: %v", err)
	}
	usage, err := second.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if usage.Session != 0 {
		t.Errorf("session after restart = %d, want 0", usage.Session)
	}
	if usage.Total != 10 {
		t.Errorf("total after restart = %d, want 10", usage.Total)
	}
}

func TestCorruptFileStartsFromZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token_usage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tracker, err := NewTracker(path)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	if err := tracker.Add(1, 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var usage Usage
	if err := json.Unmarshal(raw, &usage); err != nil {
		t.Fatalf("file is not valid JSON after recovery: %v", err)
	}
	if usage.Total != 2 {
		t.Errorf("total = %d, want 2", usage.Total)
	}
}
