package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/sales"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AggregateModel
	UserID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_sales_user_status,priority:1"`
	SaleDate time.Time        `gorm:"not null"`
	Total    decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	Status   sales.SaleStatus `gorm:"type:varchar(20);not null;default:'PENDIENTE';index:idx_sales_user_status,priority:2"`
	Items    []CartItemModel  `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale. Items are
// included only when they were preloaded.
func (m *SaleModel) ToDomain() *sales.Sale {
	items := make([]sales.CartItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	return &sales.Sale{
		BaseAggregateRoot: m.ToAggregateRoot(),
		UserID:            m.UserID,
		SaleDate:          m.SaleDate,
		Total:             m.Total,
		Status:            m.Status,
		Items:             items,
	}
}

// FromDomain populates the sale row. Items are mapped separately so they can
// be upserted on their own.
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.UserID = s.UserID
	m.SaleDate = s.SaleDate
	m.Total = s.Total
	m.Status = s.Status
}

// SaleModelFromDomain creates a new persistence model from a domain Sale.
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// CartItemModel is the persistence model for a sale line.
type CartItemModel struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Quantity    int              `gorm:"not null"`
	UnitPrice   decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	TaxAmount   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal    decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Status      sales.ItemStatus `gorm:"type:varchar(20);not null;default:'ACTIVO'"`
	AbandonedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a domain CartItem.
func (m *CartItemModel) ToDomain() sales.CartItem {
	return sales.CartItem{
		ID:          m.ID,
		SaleID:      m.SaleID,
		UserID:      m.UserID,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TaxAmount:   m.TaxAmount,
		Subtotal:    m.Subtotal,
		Status:      m.Status,
		AbandonedAt: m.AbandonedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CartItemModelFromDomain creates a persistence model from a domain CartItem.
func CartItemModelFromDomain(item sales.CartItem) CartItemModel {
	return CartItemModel{
		ID:          item.ID,
		SaleID:      item.SaleID,
		UserID:      item.UserID,
		ProductID:   item.ProductID,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TaxAmount:   item.TaxAmount,
		Subtotal:    item.Subtotal,
		Status:      item.Status,
		AbandonedAt: item.AbandonedAt,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
