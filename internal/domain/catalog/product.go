package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVO"
	ProductStatusInactive ProductStatus = "INACTIVO"
)

var ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")

// Product is a catalog entry. Stock only changes through DecreaseStock during
// purchase confirmation and never goes below zero.
type Product struct {
	shared.BaseAggregateRoot
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	TaxRateID     *uuid.UUID
	Code          string
	Brand         string
	Name          string
	ExpiresAt     *time.Time
	Image         string
	Price         decimal.Decimal
	Stock         int
	Status        ProductStatus
}

// NewProduct creates an active product.
func NewProduct(code, name string, price decimal.Decimal, stock int) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Price:             price,
		Stock:             stock,
		Status:            ProductStatusActive,
	}, nil
}

// SetTaxRate links the product to a tax rate.
func (p *Product) SetTaxRate(taxRateID uuid.UUID) {
	p.TaxRateID = &taxRateID
	p.UpdatedAt = time.Now()
}

// HasStock reports whether quantity units can be taken.
func (p *Product) HasStock(quantity int) bool {
	return quantity <= p.Stock
}

// DecreaseStock takes quantity units out of stock.
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !p.HasStock(quantity) {
		return NewInsufficientStockError(p, quantity)
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// InsufficientStockError names the product that cannot cover a request.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func NewInsufficientStockError(p *Product, requested int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   p.Stock,
		Requested:   requested,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d", e.ProductName, e.Available, e.Requested)
}

// Is lets errors.Is(err, shared.ErrInsufficientStock) match.
func (e *InsufficientStockError) Is(target error) bool {
	return target == shared.ErrInsufficientStock
}

// DomainError converts the error for transport with its details.
func (e *InsufficientStockError) DomainError() *shared.DomainError {
	de := shared.NewDomainError(shared.ErrInsufficientStock.Code, e.Error())
	de.Details = map[string]any{
		"product_id":   e.ProductID.String(),
		"product_name": e.ProductName,
		"available":    e.Available,
		"requested":    e.Requested,
	}
	return de
}
