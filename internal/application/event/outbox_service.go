// Package event exposes administrative views over the domain event outbox.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OutboxService lets administrators inspect relay health and requeue dead
// letters.
type OutboxService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

// NewOutboxService creates a new outbox service
func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxService{repo: repo, logger: logger}
}

// OutboxEntryDTO is an outbox entry without its payload
type OutboxEntryDTO struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OutboxFilter pages through dead letters
type OutboxFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OutboxStatsDTO counts entries per status
type OutboxStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// RetryAllResult reports how many dead letters were requeued
type RetryAllResult struct {
	Requeued int64 `json:"requeued"`
}

var errOutboxUnavailable = shared.NewDomainError("INTERNAL_ERROR", "Outbox is unavailable")

// Stats returns entry counts per status.
func (s *OutboxService) Stats(ctx context.Context, actor identity.Actor) (*OutboxStatsDTO, error) {
	if err := actor.Require("view outbox", identity.RoleAdministrator); err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count outbox entries", zap.Error(err))
		return nil, errOutboxUnavailable
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &OutboxStatsDTO{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

// ListDead returns one page of dead letters.
func (s *OutboxService) ListDead(ctx context.Context, actor identity.Actor, filter OutboxFilter) (*shared.Paginated[OutboxEntryDTO], error) {
	if err := actor.Require("view outbox", identity.RoleAdministrator); err != nil {
		return nil, err
	}

	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	entries, total, err := s.repo.FindDead(ctx, f.Page, f.PageSize)
	if err != nil {
		s.logger.Error("Failed to list dead letters", zap.Error(err))
		return nil, errOutboxUnavailable
	}

	items := make([]OutboxEntryDTO, len(entries))
	for i, e := range entries {
		items[i] = toOutboxEntryDTO(e)
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// RetryDead requeues one dead letter. Entries in any other state are
// rejected with INVALID_STATE.
func (s *OutboxService) RetryDead(ctx context.Context, actor identity.Actor, id uuid.UUID) (*OutboxEntryDTO, error) {
	if err := actor.Require("retry outbox entries", identity.RoleAdministrator); err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load outbox entry", zap.Error(err), zap.String("id", id.String()))
		return nil, errOutboxUnavailable
	}
	if entry == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Outbox entry not found")
	}
	if err := entry.ResetForRetry(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to requeue outbox entry", zap.Error(err), zap.String("id", id.String()))
		return nil, errOutboxUnavailable
	}

	s.logger.Info("Dead letter requeued",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType),
	)
	dto := toOutboxEntryDTO(entry)
	return &dto, nil
}

// RetryAllDead requeues every dead letter, page by page. Entries that fail
// to update are logged and skipped.
func (s *OutboxService) RetryAllDead(ctx context.Context, actor identity.Actor) (*RetryAllResult, error) {
	if err := actor.Require("retry outbox entries", identity.RoleAdministrator); err != nil {
		return nil, err
	}

	const batch = 100
	var requeued int64
	for {
		// Requeued entries leave the dead set, so the first page always
		// holds what is left.
		entries, _, err := s.repo.FindDead(ctx, 1, batch)
		if err != nil {
			s.logger.Error("Failed to list dead letters", zap.Error(err))
			return nil, errOutboxUnavailable
		}

		progressed := false
		for _, e := range entries {
			if err := e.ResetForRetry(); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, e); err != nil {
				s.logger.Error("Failed to requeue outbox entry", zap.Error(err), zap.String("id", e.ID.String()))
				continue
			}
			requeued++
			progressed = true
		}
		if len(entries) < batch || !progressed {
			break
		}
	}

	s.logger.Info("Dead letters requeued", zap.Int64("count", requeued))
	return &RetryAllResult{Requeued: requeued}, nil
}

func toOutboxEntryDTO(e *shared.OutboxEntry) OutboxEntryDTO {
	return OutboxEntryDTO{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
