package conversation

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	modeTTL         = 24 * time.Hour
	cleanupInterval = 10 * time.Minute
)

// Store keeps each user's active mode in memory. Entries expire after a day
// of inactivity, which drops abandoned sessions back to mode selection.
type Store struct {
	c *cache.Cache
}

func NewStore() *Store {
	return &Store{c: cache.New(modeTTL, cleanupInterval)}
}

func (s *Store) Get(userID int64) Mode {
	if v, ok := s.c.Get(key(userID)); ok {
		return v.(Mode)
	}
	return ModeNone
}

// Set records the user's mode and refreshes its TTL. Setting ModeNone clears
// the entry.
func (s *Store) Set(userID int64, m Mode) {
	if m == ModeNone {
		s.c.Delete(key(userID))
		return
	}
	s.c.Set(key(userID), m, modeTTL)
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
