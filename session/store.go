package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/poiesic/advisor/core"
)

// Store holds every live session. It is safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	cache        *cache.Cache
	locks        *keyedMutex
	historyLimit int
	logger       *slog.Logger
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	// A non-positive cleanup interval keeps the janitor goroutine off;
	// expired sessions are swept at the start of each operation instead.
	c := cache.New(o.expiry, 0)

	s := &Store{
		cache:        c,
		locks:        newKeyedMutex(),
		historyLimit: o.historyLimit,
		logger:       o.logger,
	}
	c.OnEvicted(func(id string, _ any) {
		s.logger.Debug("session expired", "session", id)
	})
	return s
}

// GetOrCreate returns a snapshot of the session, creating it if absent.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touch(id).snapshot()
}

// Update records one exchange and the courses it mentioned.
func (s *Store) Update(id, userMessage, assistantMessage string, mentioned []core.CourseID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.touch(id)
	st.history.append(core.Turn{
		User:      userMessage,
		Assistant: assistantMessage,
		Timestamp: st.lastAccess,
	})
	st.mention(mentioned)
	return st.snapshot()
}

// SetStudentLevel changes which catalog the session retrieves from.
func (s *Store) SetStudentLevel(id string, level core.Level) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.touch(id)
	if core.ValidateLevel(level) == nil {
		st.level = level
	}
	return st.snapshot()
}

// MergeTranscriptCourses adds courses read from a transcript to both the
// transcript and completed sets.
func (s *Store) MergeTranscriptCourses(id string, courses []core.CourseID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.touch(id)
	for _, c := range courses {
		st.transcript[c] = struct{}{}
		st.completed[c] = struct{}{}
	}
	return st.snapshot()
}

// Lock acquires the per-session turn lock and returns its release function.
// Holding it does not block other sessions or the store itself.
func (s *Store) Lock(id string) func() {
	return s.locks.Lock(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.DeleteExpired()
	return s.cache.ItemCount()
}

// Close forgets every session.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Flush()
	return nil
}

// touch sweeps expired sessions, then loads or creates id and refreshes
// its expiry. Callers hold s.mu.
func (s *Store) touch(id string) *state {
	s.cache.DeleteExpired()

	now := time.Now()
	var st *state
	if v, ok := s.cache.Get(id); ok {
		st = v.(*state)
	} else {
		st = newState(id, s.historyLimit, now)
		s.logger.Debug("session created", "session", id)
	}
	st.lastAccess = now
	s.cache.SetDefault(id, st)
	return st
}
