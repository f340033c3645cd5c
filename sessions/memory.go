package sessions

import (
	"context"
	"sync"

	"github.com/thejerf/abtime"
)

// Option configures a session store.
type Option func(*storeOptions)

type storeOptions struct {
	newId IdGenerator
	clock abtime.AbstractTime
}

// WithIdGenerator replaces the session id source.
func WithIdGenerator(gen IdGenerator) Option {
	return func(o *storeOptions) {
		o.newId = gen
	}
}

// WithClock replaces the wall clock used to stamp and expire sessions.
func WithClock(clock abtime.AbstractTime) Option {
	return func(o *storeOptions) {
		o.clock = clock
	}
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{
		newId: newSessionId,
		clock: abtime.NewRealTime(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// sessionTable is the in-process session map shared by the memory-backed
// stores. All access goes through mu.
type sessionTable struct {
	mu       sync.RWMutex
	sessions map[string]Session
	storeOptions
}

func (t *sessionTable) init(opts []Option) {
	t.sessions = make(map[string]Session)
	t.storeOptions = buildOptions(opts)
}

func (t *sessionTable) create(userId string) (string, error) {
	if !ValidUserId(userId) {
		return "", ErrInvalidArgument
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for attempt := 0; attempt < maxIdAttempts; attempt++ {
		id, err := t.newId()
		if err != nil {
			return "", err
		}
		if _, taken := t.sessions[id]; taken || id == "" {
			continue
		}
		t.sessions[id] = Session{
			Id:        id,
			UserId:    userId,
			CreatedAt: t.clock.Now(),
		}
		return id, nil
	}
	return "", ErrSessionIdCollision
}

func (t *sessionTable) get(sessionId string) (Session, error) {
	if sessionId == "" {
		return Session{}, ErrInvalidArgument
	}

	t.mu.RLock()
	s, ok := t.sessions[sessionId]
	t.mu.RUnlock()

	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (t *sessionTable) destroy(sessionId string) bool {
	if sessionId == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sessions[sessionId]; !ok {
		return false
	}
	delete(t.sessions, sessionId)
	return true
}

// Len returns the number of sessions held, expired ones included.
func (t *sessionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// MemoryStore keeps sessions in process memory with no expiry. Sessions are lost
// on restart.
type MemoryStore struct {
	sessionTable
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	m := &MemoryStore{}
	m.init(opts)
	return m
}

func (m *MemoryStore) CreateSession(_ context.Context, userId string) (string, error) {
	return m.create(userId)
}

func (m *MemoryStore) UserIdForSessionId(_ context.Context, sessionId string) (string, error) {
	s, err := m.get(sessionId)
	if err != nil {
		return "", err
	}
	return s.UserId, nil
}

func (m *MemoryStore) DestroySession(_ context.Context, sessionId string) (bool, error) {
	return m.destroy(sessionId), nil
}
