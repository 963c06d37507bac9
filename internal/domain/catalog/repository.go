package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs returns the products that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// FindByIDsForUpdate loads and row-locks products in ascending ID order.
	// Must be called inside a transaction.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateStock persists a new stock level.
	UpdateStock(ctx context.Context, product *Product) error
}

// TaxRateRepository defines the interface for tax rate persistence
type TaxRateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TaxRate, error)
	FindAll(ctx context.Context) ([]*TaxRate, error)
	Save(ctx context.Context, rate *TaxRate) error
}
