package coach

import (
	"sync"
	"time"
)

// ============================================================================
// IN-MEMORY SESSION STORE
// ============================================================================
// Single authoritative in-memory store per process; created at process
// start, cleared only at process restart. Injected into the Manager rather
// than living in a package global so tests run against isolated instances.
//
// Locking model: the store mutex guards only the session map. Each session
// carries its own mutex so ingestion for one session serializes (the
// seen-event check and turn-index increment must be atomic together) while
// different sessions proceed fully in parallel.

// Store holds all session aggregates for the process lifetime.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	abandonAfter time.Duration // idle time before live -> abandoned
	sweepEvery   time.Duration // sweep interval

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// sessionEntry pairs an aggregate with the mutex that serializes access to
// it. Lock ordering: never take the store mutex while holding an entry
// mutex.
type sessionEntry struct {
	mu    sync.Mutex
	state *SessionState
}

// StoreOption is a functional option for configuring a Store.
type StoreOption func(*Store)

// WithAbandonTimeout sets how long a live session may idle before the
// sweep transitions it to abandoned.
func WithAbandonTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.abandonAfter = d
	}
}

// WithSweepInterval sets how often the abandon sweep runs.
func WithSweepInterval(d time.Duration) StoreOption {
	return func(s *Store) {
		s.sweepEvery = d
	}
}

// NewStore creates a session store and starts its background abandon sweep.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions:     make(map[string]*sessionEntry),
		abandonAfter: 30 * time.Minute,
		sweepEvery:   5 * time.Minute,
		stopSweep:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.sweepLoop()

	return s
}

// Add registers a freshly created session. The id must be unused.
func (s *Store) Add(state *SessionState) error {
	if state == nil || state.SessionID == "" {
		return NewError(CodeInternal, "session state requires an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[state.SessionID]; exists {
		return NewError(CodeInternal, "session id collision: %s", state.SessionID)
	}
	s.sessions[state.SessionID] = &sessionEntry{state: state}
	return nil
}

// entry returns the live entry for a session id.
func (s *Store) entry(sessionID string) (*sessionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	return e, ok
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *Store) Close() {
	s.sweepOnce.Do(func() {
		close(s.stopSweep)
	})
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stopSweep:
			return
		}
	}
}

// sweep transitions idle live sessions to abandoned. Sessions are never
// deleted: the report and event log stay readable for the process lifetime.
func (s *Store) sweep(now time.Time) {
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		st := e.state
		if st.Status == StatusLive && now.Sub(st.UpdatedAt) > s.abandonAfter {
			st.Status = StatusAbandoned
			st.UpdatedAt = now.UTC()
		}
		e.mu.Unlock()
	}
}

// StoreStats reports current store contents for the health endpoint.
type StoreStats struct {
	Sessions    int `json:"sessions"`
	Created     int `json:"created"`
	Live        int `json:"live"`
	Completed   int `json:"completed"`
	Abandoned   int `json:"abandoned"`
	TotalEvents int `json:"total_events"`
}

// Stats counts sessions by status.
func (s *Store) Stats() StoreStats {
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	stats := StoreStats{Sessions: len(entries)}
	for _, e := range entries {
		e.mu.Lock()
		switch e.state.Status {
		case StatusCreated:
			stats.Created++
		case StatusLive:
			stats.Live++
		case StatusCompleted:
			stats.Completed++
		case StatusAbandoned:
			stats.Abandoned++
		}
		stats.TotalEvents += len(e.state.Events)
		e.mu.Unlock()
	}
	return stats
}
