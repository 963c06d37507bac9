package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newStoreWithClock() (*InMemoryRefreshTokenStore, *manualClock) {
	clock := &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewInMemoryRefreshTokenStore()
	store.now = clock.Now
	return store, clock
}

func TestInMemoryRefreshTokenStore_SaveExistsRevoke(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryRefreshTokenStore()
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, "token-1", userID, time.Hour))

	exists, err := store.Exists(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, exists)

	found, err := store.Revoke(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, found)

	exists, err = store.Exists(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, exists)

	found, err = store.Revoke(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, found, "second revoke reports nothing removed")
}

func TestInMemoryRefreshTokenStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, clock := newStoreWithClock()

	require.NoError(t, store.Save(ctx, "short", uuid.New(), time.Minute))
	require.NoError(t, store.Save(ctx, "long", uuid.New(), time.Hour))

	clock.Advance(2 * time.Minute)

	exists, err := store.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := store.Revoke(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)

	exists, err = store.Exists(ctx, "long")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInMemoryRefreshTokenStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	store, clock := newStoreWithClock()

	require.NoError(t, store.Save(ctx, "a", uuid.New(), time.Minute))
	require.NoError(t, store.Save(ctx, "b", uuid.New(), time.Minute))
	require.NoError(t, store.Save(ctx, "c", uuid.New(), time.Hour))
	assert.Equal(t, 3, store.Len())

	clock.Advance(5 * time.Minute)

	assert.Equal(t, 2, store.Cleanup())
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryRefreshTokenStore_StartCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, clock := newStoreWithClock()

	require.NoError(t, store.Save(ctx, "a", uuid.New(), time.Minute))
	clock.Advance(time.Hour)

	store.StartCleanup(ctx, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestInMemoryRefreshTokenStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryRefreshTokenStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token := uuid.NewString()
			_ = store.Save(ctx, token, uuid.New(), time.Hour)
			_, _ = store.Exists(ctx, token)
			_, _ = store.Revoke(ctx, token)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, store.Len())
}

func TestRefreshTokenStores_Interface(t *testing.T) {
	var _ identity.RefreshTokenStore = NewInMemoryRefreshTokenStore()
	var _ identity.RefreshTokenStore = NewRedisRefreshTokenStore(nil)
}

func TestRedisRefreshTokenStore_Key(t *testing.T) {
	store := NewRedisRefreshTokenStore(nil)
	assert.Equal(t, "auth:refresh:abc", store.key("abc"))
}
