package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleCreated   = "sales.sale.created"
	EventTypeSaleConfirmed = "sales.sale.confirmed"
	EventTypeSaleAbandoned = "sales.sale.abandoned"
)

// SaleCreatedEvent is raised when a user's first cart write opens a sale.
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID uuid.UUID `json:"sale_id"`
	UserID uuid.UUID `json:"user_id"`
}

func NewSaleCreatedEvent(sale *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		UserID:          sale.UserID,
	}
}

// SoldItemInfo describes one sold line in a confirmation event.
type SoldItemInfo struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleConfirmedEvent is raised after stock was decremented and the sale closed.
type SaleConfirmedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
	Items       []SoldItemInfo  `json:"items"`
}

func NewSaleConfirmedEvent(sale *Sale) *SaleConfirmedEvent {
	items := make([]SoldItemInfo, 0, len(sale.Items))
	for _, item := range sale.Items {
		if item.Status != ItemStatusSold {
			continue
		}
		items = append(items, SoldItemInfo{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxAmount: item.TaxAmount,
			Subtotal:  item.Subtotal,
		})
	}
	return &SaleConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleConfirmed, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		UserID:          sale.UserID,
		Total:           sale.Total,
		ConfirmedAt:     sale.SaleDate,
		Items:           items,
	}
}

// SaleAbandonedEvent is raised when a user clears a pending cart.
type SaleAbandonedEvent struct {
	shared.BaseDomainEvent
	SaleID    uuid.UUID `json:"sale_id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemCount int       `json:"item_count"`
}

func NewSaleAbandonedEvent(sale *Sale) *SaleAbandonedEvent {
	return &SaleAbandonedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleAbandoned, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		UserID:          sale.UserID,
		ItemCount:       len(sale.Items),
	}
}
