package service

import (
	"context"
	"errors"
	"sync"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
)

// ErrSessionEnded is returned by Session.Do once the session has been torn
// down.
var ErrSessionEnded = errors.New("session ended")

// StoreFactory builds the record store for a new session.
type StoreFactory func(sessionID string) RecordStore

// Session is the state owned by one interactive user. Interactions on a
// session run one at a time under its lock.
type Session struct {
	ID string

	mu       sync.Mutex
	store    RecordStore
	lastSeen time.Time
	ended    bool
}

// Do runs fn with exclusive access to the session's store. It returns
// ErrSessionEnded without calling fn when the session has ended.
func (s *Session) Do(fn func(store RecordStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrSessionEnded
	}
	s.lastSeen = timeNow()
	return fn(s.store)
}

// teardown marks the session ended and clears its store, provided idle
// reports true under the session lock.
func (s *Session) teardown(idle func(lastSeen time.Time) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || !idle(s.lastSeen) {
		return false, nil
	}
	s.ended = true
	return true, s.store.Clear()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// timeNow is a variable for testability.
var timeNow = time.Now

type SessionManager struct {
	newStore StoreFactory
	ttl      time.Duration
	logger   kitlog.Logger

	sessions     map[string]*Session
	sessionsLock sync.RWMutex
}

func NewSessionManager(newStore StoreFactory, ttl time.Duration, logger kitlog.Logger) *SessionManager {
	if newStore == nil {
		newStore = func(string) RecordStore { return NewMemoryStore() }
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &SessionManager{
		newStore: newStore,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Start creates a session with an empty store.
func (m *SessionManager) Start() *Session {
	id := uuid.New().String()
	sess := &Session{
		ID:       id,
		store:    m.newStore(id),
		lastSeen: timeNow(),
	}

	m.sessionsLock.Lock()
	m.sessions[id] = sess
	m.sessionsLock.Unlock()

	level.Debug(m.logger).Log("msg", "session started", "session", id)
	return sess
}

// Get returns the live session for id.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.sessionsLock.RLock()
	defer m.sessionsLock.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// End tears the session down: its records are dropped and the id forgotten.
// Ending an unknown session is a no-op.
func (m *SessionManager) End(id string) error {
	_, err := m.end(id, func(time.Time) bool { return true })
	return err
}

func (m *SessionManager) end(id string, idle func(lastSeen time.Time) bool) (bool, error) {
	sess, ok := m.Get(id)
	if !ok {
		return false, nil
	}
	ended, err := sess.teardown(idle)
	if !ended {
		return false, nil
	}

	m.sessionsLock.Lock()
	if m.sessions[id] == sess {
		delete(m.sessions, id)
	}
	m.sessionsLock.Unlock()

	if err != nil {
		level.Error(m.logger).Log("msg", "session teardown failed", "session", id, "err", err)
		return true, err
	}
	level.Debug(m.logger).Log("msg", "session ended", "session", id)
	return true, nil
}

func (m *SessionManager) Len() int {
	m.sessionsLock.RLock()
	defer m.sessionsLock.RUnlock()
	return len(m.sessions)
}

// Sweep ends every session idle for longer than the ttl and reports how many
// were ended. A zero ttl disables expiry.
func (m *SessionManager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := timeNow().Add(-m.ttl)

	m.sessionsLock.RLock()
	expired := make([]string, 0)
	for id, sess := range m.sessions {
		if sess.idleSince().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.sessionsLock.RUnlock()

	ended := 0
	for _, id := range expired {
		// the session may have been used since it was listed
		ok, _ := m.end(id, func(lastSeen time.Time) bool { return lastSeen.Before(cutoff) })
		if ok {
			ended++
		}
	}
	if ended > 0 {
		level.Info(m.logger).Log("msg", "expired idle sessions", "count", ended)
	}
	return ended
}

// RunSweeper calls Sweep every interval until ctx is done, then ends all
// remaining sessions.
func (m *SessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			m.endAll()
			return
		}
	}
}

func (m *SessionManager) endAll() {
	m.sessionsLock.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.sessionsLock.RUnlock()

	for _, id := range ids {
		m.End(id)
	}
}
