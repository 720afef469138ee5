package ratelimit

import (
	"sync"
	"time"
)

// Clock supplies the current time; injectable so tests control the window.
type Clock func() time.Time

type window struct {
	count   int
	started time.Time
}

// Store is a keyed fixed-window counter with explicit lifetime. It replaces
// the old module-level map: callers own the instance, tests own the clock.
type Store struct {
	mu      sync.Mutex
	now     Clock
	windows map[string]*window
}

// New builds a Store; a nil clock falls back to time.Now.
func New(clock Clock) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{now: clock, windows: map[string]*window{}}
}

// Allow reports whether the submitter identified by key may act, counting at
// most limit actions per rolling window duration. The first call after a
// window expires starts a fresh one.
func (s *Store) Allow(key string, limit int, duration time.Duration) bool {
	if limit <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w := s.windows[key]
	if w == nil || now.Sub(w.started) >= duration {
		s.windows[key] = &window{count: 1, started: now}
		return true
	}
	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

// Purge drops windows older than maxAge so long-lived processes don't
// accumulate one entry per submitter forever.
func (s *Store) Purge(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, w := range s.windows {
		if now.Sub(w.started) >= maxAge {
			delete(s.windows, key)
		}
	}
}
