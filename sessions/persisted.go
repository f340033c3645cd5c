package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PersistedStore keeps sessions only in a durable RecordStore so that they
// survive process restarts. The expiry rule is the same as ExpiringStore's,
// applied to the durable record's creation time.
type PersistedStore struct {
	records  RecordStore
	duration time.Duration
	storeOptions
}

// NewPersistedStore returns a store writing through to records.
func NewPersistedStore(records RecordStore, duration time.Duration, opts ...Option) *PersistedStore {
	return &PersistedStore{
		records:      records,
		duration:     duration,
		storeOptions: buildOptions(opts),
	}
}

// Duration returns the configured session lifetime.
func (p *PersistedStore) Duration() time.Duration {
	return p.duration
}

// CreateSession returns only after the durable record has been written, so a
// returned id is immediately resolvable.
func (p *PersistedStore) CreateSession(ctx context.Context, userId string) (string, error) {
	if !ValidUserId(userId) {
		return "", ErrInvalidArgument
	}

	for attempt := 0; attempt < maxIdAttempts; attempt++ {
		id, err := p.newId()
		if err != nil {
			return "", err
		}
		if id == "" {
			continue
		}
		err = p.records.SaveSession(ctx, Session{
			Id:        id,
			UserId:    userId,
			CreatedAt: p.clock.Now().UTC(),
		})
		if errors.Is(err, ErrSessionExists) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("persisting session: %w", err)
		}
		return id, nil
	}
	return "", ErrSessionIdCollision
}

func (p *PersistedStore) UserIdForSessionId(ctx context.Context, sessionId string) (string, error) {
	if sessionId == "" {
		return "", ErrInvalidArgument
	}
	s, err := p.records.LoadSessionById(ctx, sessionId)
	if err != nil {
		return "", err
	}
	if s.Expired(p.duration, p.clock.Now()) {
		return "", ErrSessionNotFound
	}
	return s.UserId, nil
}

func (p *PersistedStore) DestroySession(ctx context.Context, sessionId string) (bool, error) {
	if sessionId == "" {
		return false, nil
	}
	err := p.records.DeleteSessionById(ctx, sessionId)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting session: %w", err)
	}
	return true, nil
}
