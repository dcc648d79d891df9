package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks which bearer sessions are live. A token whose
// session id is absent here is rejected at connection time regardless of
// its signature, which is how logout and revocation work.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string) error
	Get(ctx context.Context, sessionID string) (string, error)
	Touch(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
}

type sessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a redis-backed session store.
func NewSessionStore(client *redis.Client) SessionStore {
	return &sessionStore{
		client: client,
		ttl:    7 * 24 * time.Hour,
	}
}

func (s *sessionStore) key(sessionID string) string {
	return fmt.Sprintf("auth:session:%s", sessionID)
}

func (s *sessionStore) Save(ctx context.Context, sessionID, userID string) error {
	return s.client.Set(ctx, s.key(sessionID), userID, s.ttl).Err()
}

// Get returns the user id bound to the session, or "" when the session
// does not exist.
func (s *sessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Touch extends the session's TTL; called on successful connects so
// active users stay logged in.
func (s *sessionStore) Touch(ctx context.Context, sessionID string) error {
	return s.client.Expire(ctx, s.key(sessionID), s.ttl).Err()
}

func (s *sessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}
