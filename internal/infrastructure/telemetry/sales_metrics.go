package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	appsales "github.com/storefront/backend/internal/application/sales"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Attribute keys on sales instruments.
var (
	AttrOperation = attribute.Key("operation")
	AttrReason    = attribute.Key("reason")
)

// SalesMetrics records cart and checkout activity.
type SalesMetrics struct {
	cartWrites           metric.Int64Counter
	cartItems            metric.Int64Histogram
	confirmations        metric.Int64Counter
	confirmationFailures metric.Int64Counter
	saleAmount           metric.Float64Histogram
	confirmDuration      metric.Float64Histogram
	abandoned            metric.Int64Counter
}

var _ appsales.Metrics = (*SalesMetrics)(nil)

// NewSalesMetrics registers the sales instruments on meter.
func NewSalesMetrics(meter metric.Meter) (*SalesMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &SalesMetrics{}
	var err error

	if m.cartWrites, err = meter.Int64Counter("storefront_cart_writes_total",
		metric.WithDescription("Cart writes by operation (merge, replace)"),
		metric.WithUnit("{writes}")); err != nil {
		return nil, wrapInstrumentErr("storefront_cart_writes_total", err)
	}
	if m.cartItems, err = meter.Int64Histogram("storefront_cart_write_items",
		metric.WithDescription("Lines per cart write or confirmed sale"),
		metric.WithUnit("{items}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 20, 50)); err != nil {
		return nil, wrapInstrumentErr("storefront_cart_write_items", err)
	}
	if m.confirmations, err = meter.Int64Counter("storefront_sales_confirmed_total",
		metric.WithDescription("Sales confirmed"),
		metric.WithUnit("{sales}")); err != nil {
		return nil, wrapInstrumentErr("storefront_sales_confirmed_total", err)
	}
	if m.confirmationFailures, err = meter.Int64Counter("storefront_sale_confirmation_failures_total",
		metric.WithDescription("Confirmations rejected, by reason code"),
		metric.WithUnit("{attempts}")); err != nil {
		return nil, wrapInstrumentErr("storefront_sale_confirmation_failures_total", err)
	}
	if m.saleAmount, err = meter.Float64Histogram("storefront_sale_amount",
		metric.WithDescription("Total of confirmed sales, tax included"),
		metric.WithExplicitBucketBoundaries(SaleAmountBuckets...)); err != nil {
		return nil, wrapInstrumentErr("storefront_sale_amount", err)
	}
	if m.confirmDuration, err = meter.Float64Histogram("storefront_sale_confirmation_duration_seconds",
		metric.WithDescription("Time spent inside the confirmation transaction"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(HTTPDurationBuckets...)); err != nil {
		return nil, wrapInstrumentErr("storefront_sale_confirmation_duration_seconds", err)
	}
	if m.abandoned, err = meter.Int64Counter("storefront_sales_abandoned_total",
		metric.WithDescription("Pending sales moved to abandoned"),
		metric.WithUnit("{sales}")); err != nil {
		return nil, wrapInstrumentErr("storefront_sales_abandoned_total", err)
	}
	return m, nil
}

func wrapInstrumentErr(name string, err error) error {
	return fmt.Errorf("failed to create instrument %s: %w", name, err)
}

// RecordCartWrite counts one merge or replace.
func (m *SalesMetrics) RecordCartWrite(ctx context.Context, operation string, itemCount int) {
	attrs := metric.WithAttributes(AttrOperation.String(operation))
	m.cartWrites.Add(ctx, 1, attrs)
	m.cartItems.Record(ctx, int64(itemCount), attrs)
}

// RecordConfirmation records a successful checkout.
func (m *SalesMetrics) RecordConfirmation(ctx context.Context, total decimal.Decimal, itemCount int, duration time.Duration) {
	m.confirmations.Add(ctx, 1)
	m.cartItems.Record(ctx, int64(itemCount), metric.WithAttributes(AttrOperation.String("confirm")))
	m.saleAmount.Record(ctx, total.InexactFloat64())
	m.confirmDuration.Record(ctx, duration.Seconds())
}

// RecordConfirmationFailure counts a rejected checkout by error code.
func (m *SalesMetrics) RecordConfirmationFailure(ctx context.Context, reason string) {
	m.confirmationFailures.Add(ctx, 1, metric.WithAttributes(AttrReason.String(reason)))
}

// RecordAbandonment counts sales abandoned in one call.
func (m *SalesMetrics) RecordAbandonment(ctx context.Context, saleCount int) {
	if saleCount <= 0 {
		return
	}
	m.abandoned.Add(ctx, int64(saleCount))
}
