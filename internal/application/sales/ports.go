package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxRater resolves the tax percentage of a product.
type TaxRater interface {
	RateFor(ctx context.Context, productID uuid.UUID) decimal.Decimal
}

// ImageURLResolver turns a stored product image field into a URL.
type ImageURLResolver interface {
	Resolve(ctx context.Context, raw string) string
}

// Metrics receives sales business measurements.
type Metrics interface {
	RecordCartWrite(ctx context.Context, operation string, itemCount int)
	RecordConfirmation(ctx context.Context, total decimal.Decimal, itemCount int, duration time.Duration)
	RecordConfirmationFailure(ctx context.Context, reason string)
	RecordAbandonment(ctx context.Context, saleCount int)
}

type noopMetrics struct{}

func (noopMetrics) RecordCartWrite(context.Context, string, int)                            {}
func (noopMetrics) RecordConfirmation(context.Context, decimal.Decimal, int, time.Duration) {}
func (noopMetrics) RecordConfirmationFailure(context.Context, string)                       {}
func (noopMetrics) RecordAbandonment(context.Context, int)                                  {}
