package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TaxLookup resolves the tax percentage that applies to a product.
type TaxLookup struct {
	productRepo catalog.ProductRepository
	taxRateRepo catalog.TaxRateRepository
	logger      *zap.Logger
}

// NewTaxLookup creates a new TaxLookup
func NewTaxLookup(productRepo catalog.ProductRepository, taxRateRepo catalog.TaxRateRepository, logger *zap.Logger) *TaxLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxLookup{
		productRepo: productRepo,
		taxRateRepo: taxRateRepo,
		logger:      logger,
	}
}

// RateFor returns the product's tax percentage. Any missing link in the
// product -> tax rate chain, or a lookup failure, yields 0 and is logged.
// It never fails the caller.
func (t *TaxLookup) RateFor(ctx context.Context, productID uuid.UUID) decimal.Decimal {
	product, err := t.productRepo.FindByID(ctx, productID)
	if err != nil {
		t.logFailure("product lookup failed, applying 0% tax", productID, err)
		return decimal.Zero
	}
	if product.TaxRateID == nil {
		t.logger.Warn("product has no tax rate, applying 0% tax", zap.String("product_id", productID.String()))
		return decimal.Zero
	}

	rate, err := t.taxRateRepo.FindByID(ctx, *product.TaxRateID)
	if err != nil {
		t.logFailure("tax rate lookup failed, applying 0% tax", productID, err,
			zap.String("tax_rate_id", product.TaxRateID.String()))
		return decimal.Zero
	}
	return rate.Percentage
}

func (t *TaxLookup) logFailure(msg string, productID uuid.UUID, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("product_id", productID.String()), zap.Error(err))
	if errors.Is(err, shared.ErrNotFound) {
		t.logger.Warn(msg, fields...)
		return
	}
	t.logger.Error(msg, fields...)
}
