package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers logged-out tokens until they would have expired.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

const revokedKeyPrefix = "blacklist:"

// RedisStore keeps revoked tokens in redis with a TTL matching the token's
// remaining lifetime, so entries expire on their own.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+HashToken(token), 1, ttl).Err()
}

// PingContext checks that redis is reachable.
func (s *RedisStore) PingContext(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := s.client.Get(ctx, revokedKeyPrefix+HashToken(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryStore is the single-process fallback used when redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, key)
		}
	}
	s.revoked[HashToken(token)] = now.Add(ttl)
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[HashToken(token)]
	return ok && s.now().Before(until), nil
}
