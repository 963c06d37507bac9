package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Line is one client-submitted cart line after its tax rate is resolved.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal // percent, 0-100
}

// Validate checks the line before it touches a sale.
func (l Line) Validate() error {
	if l.ProductID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if l.Quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if l.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if !l.UnitPrice.Equal(l.UnitPrice.Truncate(2)) {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot have more than 2 decimals")
	}
	if l.TaxRate.IsNegative() || l.TaxRate.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	return nil
}

// CartItem is one product line within a Sale.
type CartItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	UserID      uuid.UUID
	ProductID   uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	TaxAmount   decimal.Decimal
	Subtotal    decimal.Decimal
	Status      ItemStatus
	AbandonedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func newCartItem(saleID, userID uuid.UUID, line Line) CartItem {
	now := time.Now()
	item := CartItem{
		ID:        uuid.New(),
		SaleID:    saleID,
		UserID:    userID,
		ProductID: line.ProductID,
		Status:    ItemStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	item.reprice(line)
	return item
}

// reprice overwrites quantity and price and recomputes tax and subtotal.
func (i *CartItem) reprice(line Line) {
	amounts := ComputeLine(line.UnitPrice, line.Quantity, line.TaxRate)
	i.Quantity = line.Quantity
	i.UnitPrice = line.UnitPrice
	i.TaxAmount = amounts.Tax
	i.Subtotal = amounts.Subtotal
	i.UpdatedAt = time.Now()
}

// IsActive reports whether the line still counts toward the sale.
func (i *CartItem) IsActive() bool {
	return i.Status == ItemStatusActive
}

func (i *CartItem) transition(target ItemStatus) error {
	if !i.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move cart item from %s to %s", i.Status, target))
	}
	i.Status = target
	i.UpdatedAt = time.Now()
	return nil
}
