package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// SaleRepository defines persistence for the Sale aggregate and its lines.
type SaleRepository interface {
	// FindByID loads a sale with all of its items.
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindLatestPending returns the user's most recent PENDIENTE sale by
	// creation time, or shared.ErrNotFound.
	FindLatestPending(ctx context.Context, userID uuid.UUID) (*Sale, error)

	// FindLatestPendingForUpdate is FindLatestPending with the sale row locked
	// until the surrounding transaction ends.
	FindLatestPendingForUpdate(ctx context.Context, userID uuid.UUID) (*Sale, error)

	// FindAllPending returns every PENDIENTE sale of the user.
	FindAllPending(ctx context.Context, userID uuid.UUID) ([]*Sale, error)

	// FindByUser lists a user's sales without items.
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*Sale, int64, error)

	// FindAll lists every sale without items; filter.Filters["status"] narrows by status.
	FindAll(ctx context.Context, filter shared.Filter) ([]*Sale, int64, error)

	// Save upserts the sale row and all item rows.
	Save(ctx context.Context, sale *Sale) error

	// DeleteItems hard-deletes item rows by ID.
	DeleteItems(ctx context.Context, ids []uuid.UUID) error
}
