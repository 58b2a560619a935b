package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aqua777/ayurveda-companion/schema"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore persists session history in Redis as JSON, so history
// survives restarts and can be shared between replicas.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisSessionStoreOption configures a RedisSessionStore.
type RedisSessionStoreOption func(*RedisSessionStore)

// WithSessionTTL sets an expiry on stored sessions. Zero means no expiry.
func WithSessionTTL(ttl time.Duration) RedisSessionStoreOption {
	return func(s *RedisSessionStore) {
		s.ttl = ttl
	}
}

// NewRedisSessionStore creates a RedisSessionStore on an existing client.
func NewRedisSessionStore(client *redis.Client, opts ...RedisSessionStoreOption) *RedisSessionStore {
	s := &RedisSessionStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the history for a session, empty when the session is new.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (schema.History, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}

	var history schema.History
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return history, nil
}

// Set replaces the history for a session.
func (s *RedisSessionStore) Set(ctx context.Context, sessionID string, history schema.History) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sessionID, err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session %s: %w", sessionID, err)
	}
	return nil
}

// Delete removes a session.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// Ensure RedisSessionStore implements the interface.
var _ SessionStore = (*RedisSessionStore)(nil)
