package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/sales"
)

// ==================== Cart DTOs ====================

// SubmitCartRequest carries the full client-side cart.
type SubmitCartRequest struct {
	Items []CartLineInput `json:"items" binding:"dive"`
}

// CartLineInput is one product line of a submitted cart
type CartLineInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CartWriteResponse is returned by merge and replace.
type CartWriteResponse struct {
	SaleID     uuid.UUID          `json:"sale_id"`
	Status     string             `json:"status"`
	Total      decimal.Decimal    `json:"total"`
	ItemsCount int                `json:"items_count"`
	Items      []CartItemResponse `json:"items"`
}

// CartItemResponse represents a persisted cart line
type CartItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Status    string          `json:"status"`
}

// CartView is the enriched current cart. Amounts are display-rounded.
type CartView struct {
	HasCart    bool            `json:"has_cart"`
	SaleID     *uuid.UUID      `json:"sale_id,omitempty"`
	Status     string          `json:"status,omitempty"`
	Items      []CartLineView  `json:"items"`
	ItemsCount int             `json:"items_count"`
	Total      decimal.Decimal `json:"total"`
}

// CartLineView is one active line enriched with product data
type CartLineView struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Stock       int             `json:"stock"`
	TaxRateID   *uuid.UUID      `json:"tax_rate_id,omitempty"`
	ImageURL    string          `json:"image_url"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ==================== Checkout DTOs ====================

// StockUpdate reports the stock movement of one product on confirmation.
type StockUpdate struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	PreviousStock int       `json:"previous_stock"`
	CurrentStock  int       `json:"current_stock"`
	QuantitySold  int       `json:"quantity_sold"`
}

// ConfirmResponse is returned after a successful purchase.
type ConfirmResponse struct {
	SaleID       uuid.UUID       `json:"sale_id"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	SaleDate     time.Time       `json:"sale_date"`
	ItemsCount   int             `json:"items_count"`
	StockUpdates []StockUpdate   `json:"stock_updates"`
}

// AbandonResponse reports how much was cleared.
type AbandonResponse struct {
	AbandonedSales int `json:"abandoned_sales"`
	AbandonedItems int `json:"abandoned_items"`
}

// ==================== Sale query DTOs ====================

// ListSalesFilter narrows sale listings
type ListSalesFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDIENTE CONFIRMADO ABANDONADO"`
}

// SaleSummary is a sale row in listings
type SaleSummary struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	CustomerName string          `json:"customer_name,omitempty"`
	SaleDate     time.Time       `json:"sale_date"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SaleDetail is a sale with every line
type SaleDetail struct {
	SaleSummary
	Items []SaleItemView `json:"items"`
}

// SaleItemView is a line of a sale detail
type SaleItemView struct {
	CartItemResponse
	ProductName string     `json:"product_name"`
	AbandonedAt *time.Time `json:"abandoned_at,omitempty"`
}

// ==================== Converters ====================

func toCartItemResponse(item sales.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		TaxAmount: item.TaxAmount,
		Subtotal:  item.Subtotal,
		Status:    item.Status.String(),
	}
}

// ToCartWriteResponse converts a pending sale after a cart write.
func ToCartWriteResponse(sale *sales.Sale) *CartWriteResponse {
	active := sale.ActiveItems()
	items := make([]CartItemResponse, len(active))
	for i, item := range active {
		items[i] = toCartItemResponse(item)
	}
	return &CartWriteResponse{
		SaleID:     sale.ID,
		Status:     sale.Status.String(),
		Total:      sale.Total,
		ItemsCount: len(items),
		Items:      items,
	}
}

func toSaleSummary(sale *sales.Sale) SaleSummary {
	return SaleSummary{
		ID:        sale.ID,
		UserID:    sale.UserID,
		SaleDate:  sale.SaleDate,
		Total:     sale.Total,
		Status:    sale.Status.String(),
		CreatedAt: sale.CreatedAt,
	}
}
