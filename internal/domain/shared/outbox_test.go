package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	aggID := uuid.New()
	evt := &testEvent{BaseDomainEvent: NewBaseDomainEvent("test.happened", "Test", aggID)}

	entry := NewOutboxEntry(evt, []byte(`{}`))

	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "test.happened", entry.EventType)
	assert.Equal(t, aggID, entry.AggregateID)
	assert.Equal(t, "Test", entry.AggregateType)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("schedules retry with backoff", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 3}

		before := time.Now()
		entry.MarkFailed("broker down")

		assert.Equal(t, OutboxStatusFailed, entry.Status)
		assert.Equal(t, 1, entry.RetryCount)
		assert.Equal(t, "broker down", entry.LastError)
		require.NotNil(t, entry.NextRetryAt)
		assert.True(t, entry.NextRetryAt.After(before))

		entry.MarkFailed("still down")
		require.NotNil(t, entry.NextRetryAt)
		assert.True(t, entry.NextRetryAt.Sub(before) >= 2*time.Second)
	})

	t.Run("moves to dead letter after max retries", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, RetryCount: 2, MaxRetries: 3}

		entry.MarkFailed("gave up")

		assert.True(t, entry.IsDead())
		assert.Nil(t, entry.NextRetryAt)
	})
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing}
	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing, RetryCount: 0, MaxRetries: 1}
	assert.ErrorIs(t, entry.ResetForRetry(), ErrInvalidState)

	entry.MarkFailed("poison")
	require.True(t, entry.IsDead())

	require.NoError(t, entry.ResetForRetry())
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Zero(t, entry.RetryCount)
	assert.Empty(t, entry.LastError)
	assert.Nil(t, entry.NextRetryAt)
}

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError("INSUFFICIENT_STOCK", "not enough of product X")

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrNotFound)

	detailed := ErrNotFound.WithDetails(map[string]any{"id": 1})
	assert.ErrorIs(t, detailed, ErrNotFound)
	assert.Equal(t, 1, detailed.Details["id"])
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 500, OrderDir: "sideways"}.Normalize()

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.PageSize)
	assert.Equal(t, "desc", f.OrderDir)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, 0, f.Offset())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)
}
