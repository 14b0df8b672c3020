package admin

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "admin:session:revoked:"

// SessionStore records revoked session tokens in Redis until they would
// have expired anyway. A nil store (or nil client) revokes nothing.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a Redis-backed session store
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Revoke marks tokenID as revoked for ttl. It reports false when no Redis
// client is configured, in which case the token stays valid until expiry.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if s == nil || s.client == nil || tokenID == "" {
		return false, nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// IsRevoked reports whether tokenID was revoked
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}
	err := s.client.Get(ctx, revokedKeyPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
