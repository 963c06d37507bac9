package sales

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/shared"
)

// TransactionScope runs a unit of work against repositories that share one
// database transaction. A returned error or a panic rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are bound to the transaction opened by Execute.
type TransactionalRepositories interface {
	SaleRepo() sales.SaleRepository
	// ProductRepo is used for the stock locks and decrements of a confirmation.
	ProductRepo() catalog.ProductRepository
	OutboxRepo() shared.OutboxRepository
}
