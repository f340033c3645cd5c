package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecordStore keeps durable session records in Redis as JSON values.
type RedisRecordStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRecordStore creates a Redis-backed record store. When sessionDuration
// is positive, keys carry a TTL a minute longer than the session lifetime so
// Redis reclaims them; expiry itself is still decided by PersistedStore.
func NewRedisRecordStore(client *redis.Client, sessionDuration time.Duration) *RedisRecordStore {
	var ttl time.Duration
	if sessionDuration > 0 {
		ttl = sessionDuration + time.Minute
	}
	return &RedisRecordStore{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

func (r *RedisRecordStore) key(sessionId string) string {
	return r.prefix + sessionId
}

func (r *RedisRecordStore) SaveSession(ctx context.Context, s Session) error {
	if s.Id == "" || s.UserId == "" {
		return ErrInvalidArgument
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(s.Id), data, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionExists
	}
	return nil
}

func (r *RedisRecordStore) LoadSessionById(ctx context.Context, id string) (Session, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(val, &s); err != nil {
		return Session{}, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return s, nil
}

func (r *RedisRecordStore) DeleteSessionById(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}
