package event

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOutboxRepo struct {
	entries   map[uuid.UUID]*shared.OutboxEntry
	countErr  error
	updateErr error
}

func newStubOutboxRepo(entries ...*shared.OutboxEntry) *stubOutboxRepo {
	r := &stubOutboxRepo{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

func (r *stubOutboxRepo) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *stubOutboxRepo) FindPending(context.Context, int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *stubOutboxRepo) FindRetryable(context.Context, time.Time, int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *stubOutboxRepo) MarkProcessing(context.Context, []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *stubOutboxRepo) Update(_ context.Context, entry *shared.OutboxEntry) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *stubOutboxRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *stubOutboxRepo) CountByStatus(context.Context) (map[shared.OutboxStatus]int64, error) {
	if r.countErr != nil {
		return nil, r.countErr
	}
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *stubOutboxRepo) FindByID(_ context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	return r.entries[id], nil
}

func (r *stubOutboxRepo) FindDead(_ context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var dead []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.IsDead() {
			dead = append(dead, e)
		}
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i].CreatedAt.Before(dead[j].CreatedAt) })
	total := int64(len(dead))
	start := (page - 1) * pageSize
	if start >= len(dead) {
		return nil, total, nil
	}
	end := min(start+pageSize, len(dead))
	return dead[start:end], total, nil
}

type saleEvent struct {
	shared.BaseDomainEvent
}

func newEntry(status shared.OutboxStatus) *shared.OutboxEntry {
	ev := &saleEvent{BaseDomainEvent: shared.NewBaseDomainEvent("sales.sale.confirmed", "Sale", uuid.New())}
	e := shared.NewOutboxEntry(ev, []byte(`{}`))
	e.Status = status
	return e
}

func newDeadEntry() *shared.OutboxEntry {
	e := newEntry(shared.OutboxStatusProcessing)
	e.MaxRetries = 1
	e.MarkFailed("broker unreachable")
	return e
}

var (
	admin    = identity.Actor{UserID: uuid.New(), Role: identity.RoleAdministrator}
	customer = identity.Actor{UserID: uuid.New(), Role: identity.RoleCustomer}
)

func TestOutboxService_Stats(t *testing.T) {
	repo := newStubOutboxRepo(
		newEntry(shared.OutboxStatusPending),
		newEntry(shared.OutboxStatusPending),
		newEntry(shared.OutboxStatusSent),
		newDeadEntry(),
	)
	svc := NewOutboxService(repo, zap.NewNop())

	stats, err := svc.Stats(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, &OutboxStatsDTO{Pending: 2, Sent: 1, Dead: 1, Total: 4}, stats)

	_, err = svc.Stats(context.Background(), customer)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	repo.countErr = errors.New("db down")
	_, err = svc.Stats(context.Background(), admin)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
}

func TestOutboxService_ListDead(t *testing.T) {
	repo := newStubOutboxRepo(newDeadEntry(), newDeadEntry(), newDeadEntry(), newEntry(shared.OutboxStatusSent))
	svc := NewOutboxService(repo, nil)

	page, err := svc.ListDead(context.Background(), admin, OutboxFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "DEAD", page.Items[0].Status)
	assert.Equal(t, "broker unreachable", page.Items[0].LastError)

	defaults, err := svc.ListDead(context.Background(), admin, OutboxFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 20, defaults.PageSize)
}

func TestOutboxService_RetryDead(t *testing.T) {
	dead := newDeadEntry()
	sent := newEntry(shared.OutboxStatusSent)
	svc := NewOutboxService(newStubOutboxRepo(dead, sent), nil)
	ctx := context.Background()

	t.Run("requeues a dead letter", func(t *testing.T) {
		dto, err := svc.RetryDead(ctx, admin, dead.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", dto.Status)
		assert.Zero(t, dto.RetryCount)
	})

	t.Run("rejects live entries", func(t *testing.T) {
		_, err := svc.RetryDead(ctx, admin, sent.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.RetryDead(ctx, admin, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("customers are refused", func(t *testing.T) {
		_, err := svc.RetryDead(ctx, customer, dead.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestOutboxService_RetryAllDead(t *testing.T) {
	repo := newStubOutboxRepo(newDeadEntry(), newDeadEntry(), newEntry(shared.OutboxStatusPending))
	svc := NewOutboxService(repo, nil)

	result, err := svc.RetryAllDead(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Requeued)

	counts, _ := repo.CountByStatus(context.Background())
	assert.Equal(t, int64(3), counts[shared.OutboxStatusPending])
	assert.Zero(t, counts[shared.OutboxStatusDead])
}

func TestOutboxService_RetryAllDead_StopsWhenUpdatesFail(t *testing.T) {
	repo := newStubOutboxRepo(newDeadEntry())
	repo.updateErr = errors.New("write failed")
	svc := NewOutboxService(repo, nil)

	result, err := svc.RetryAllDead(context.Background(), admin)
	require.NoError(t, err)
	assert.Zero(t, result.Requeued)
}
