package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const refreshKeyPrefix = "auth:refresh:"

// RedisRefreshTokenStore keeps refresh tokens as Redis keys with a TTL, so
// every API replica sees the same logins.
type RedisRefreshTokenStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisRefreshTokenStore creates a store on an existing client
func NewRedisRefreshTokenStore(client *redis.Client) *RedisRefreshTokenStore {
	return &RedisRefreshTokenStore{
		client:    client,
		keyPrefix: refreshKeyPrefix,
	}
}

func (s *RedisRefreshTokenStore) key(token string) string {
	return s.keyPrefix + token
}

// Save stores the token with its owner until ttl elapses
func (s *RedisRefreshTokenStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Exists reports whether the token is still stored
func (s *RedisRefreshTokenStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}
	return n > 0, nil
}

// Revoke deletes the token and reports whether it was stored
func (s *RedisRefreshTokenStore) Revoke(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return n > 0, nil
}

var _ identity.RefreshTokenStore = (*RedisRefreshTokenStore)(nil)

// InMemoryRefreshTokenStore keeps tokens in process memory. Suitable for a
// single instance and tests; expired entries are dropped on access and by
// StartCleanup.
type InMemoryRefreshTokenStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// NewInMemoryRefreshTokenStore creates an empty store
func NewInMemoryRefreshTokenStore() *InMemoryRefreshTokenStore {
	return &InMemoryRefreshTokenStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Save stores the token with its owner until ttl elapses
func (s *InMemoryRefreshTokenStore) Save(_ context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

// Exists reports whether the token is stored and not expired
func (s *InMemoryRefreshTokenStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(token), nil
}

// Revoke deletes the token and reports whether it was live
func (s *InMemoryRefreshTokenStore) Revoke(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.liveLocked(token)
	delete(s.entries, token)
	return live, nil
}

func (s *InMemoryRefreshTokenStore) liveLocked(token string) bool {
	entry, ok := s.entries[token]
	if !ok {
		return false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, token)
		return false
	}
	return true
}

// Cleanup drops expired tokens and returns how many were removed
func (s *InMemoryRefreshTokenStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for token, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (s *InMemoryRefreshTokenStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Len returns the number of stored tokens, expired or not
func (s *InMemoryRefreshTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ identity.RefreshTokenStore = (*InMemoryRefreshTokenStore)(nil)
