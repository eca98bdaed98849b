package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// JwtBlacklistStore remembers revoked tokens until they expire.
type JwtBlacklistStore interface {
	// IsBlacklisted checks if the given JWT ID (jti) is blacklisted.
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	// AddToBlacklist adds the given JWT ID (jti) to the blacklist with an expiration time.
	AddToBlacklist(ctx context.Context, jti string, exp time.Time) error
}

// InMemoryBlacklistStore keeps revoked ids in process memory.
type InMemoryBlacklistStore struct {
	blacklist map[string]time.Time
	mu        sync.RWMutex
	stop      chan struct{}
	once      sync.Once
}

// NewInMemoryBlacklistStore creates a store that drops expired entries every five
// minutes until Close is called.
func NewInMemoryBlacklistStore() *InMemoryBlacklistStore {
	store := &InMemoryBlacklistStore{
		blacklist: make(map[string]time.Time),
		stop:      make(chan struct{}),
	}
	go store.periodicCleanUp(5 * time.Minute)
	return store
}

func (s *InMemoryBlacklistStore) periodicCleanUp(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CleanUpExpired()
		case <-s.stop:
			return
		}
	}
}

// CleanUpExpired removes entries whose token already expired.
func (s *InMemoryBlacklistStore) CleanUpExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for jti, exp := range s.blacklist {
		if exp.Before(now) {
			delete(s.blacklist, jti)
		}
	}
}

// IsBlacklisted implements JwtBlacklistStore.
func (s *InMemoryBlacklistStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.blacklist[jti]
	return exists, nil
}

// AddToBlacklist implements JwtBlacklistStore.
func (s *InMemoryBlacklistStore) AddToBlacklist(_ context.Context, jti string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blacklist[jti] = exp
	return nil
}

// Close stops the cleanup loop.
func (s *InMemoryBlacklistStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

// RedisBlacklistStore shares revoked ids between instances. Keys expire together with
// the token.
type RedisBlacklistStore struct {
	Client *redis.Client
	Prefix string
}

// NewRedisBlacklistStore creates a RedisBlacklistStore with the "jwt:blacklist:" prefix.
func NewRedisBlacklistStore(client *redis.Client) *RedisBlacklistStore {
	return &RedisBlacklistStore{Client: client, Prefix: "jwt:blacklist:"}
}

// IsBlacklisted implements JwtBlacklistStore.
func (s *RedisBlacklistStore) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := s.Client.Exists(ctx, s.Prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddToBlacklist implements JwtBlacklistStore. Already expired tokens are not stored.
func (s *RedisBlacklistStore) AddToBlacklist(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return s.Client.Set(ctx, s.Prefix+jti, "1", ttl).Err()
}
