package sessions

import (
	"context"
	"time"
)

// ExpiringStore is a MemoryStore whose sessions stop resolving once Duration has
// passed since creation. Expired sessions stay in the map until destroyed; the
// read path never deletes.
type ExpiringStore struct {
	sessionTable
	duration time.Duration
}

// NewExpiringStore returns an in-memory store with the given session lifetime. A
// duration of zero or less disables expiry.
func NewExpiringStore(duration time.Duration, opts ...Option) *ExpiringStore {
	e := &ExpiringStore{duration: duration}
	e.init(opts)
	return e
}

// Duration returns the configured session lifetime.
func (e *ExpiringStore) Duration() time.Duration {
	return e.duration
}

func (e *ExpiringStore) CreateSession(_ context.Context, userId string) (string, error) {
	return e.create(userId)
}

func (e *ExpiringStore) UserIdForSessionId(_ context.Context, sessionId string) (string, error) {
	s, err := e.get(sessionId)
	if err != nil {
		return "", err
	}
	if s.Expired(e.duration, e.clock.Now()) {
		return "", ErrSessionNotFound
	}
	return s.UserId, nil
}

func (e *ExpiringStore) DestroySession(_ context.Context, sessionId string) (bool, error) {
	return e.destroy(sessionId), nil
}
