package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	CategoryID    *uuid.UUID            `gorm:"type:uuid;index"`
	SubcategoryID *uuid.UUID            `gorm:"type:uuid;index"`
	TaxRateID     *uuid.UUID            `gorm:"type:uuid;index"`
	Code          string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Brand         string                `gorm:"type:varchar(100)"`
	Name          string                `gorm:"type:varchar(200);not null"`
	ExpiresAt     *time.Time            `gorm:"type:date"`
	Image         string                `gorm:"type:text"`
	Price         decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	Stock         int                   `gorm:"not null;default:0;check:stock >= 0"`
	Status        catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'ACTIVO'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CategoryID:        m.CategoryID,
		SubcategoryID:     m.SubcategoryID,
		TaxRateID:         m.TaxRateID,
		Code:              m.Code,
		Brand:             m.Brand,
		Name:              m.Name,
		ExpiresAt:         m.ExpiresAt,
		Image:             m.Image,
		Price:             m.Price,
		Stock:             m.Stock,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CategoryID = p.CategoryID
	m.SubcategoryID = p.SubcategoryID
	m.TaxRateID = p.TaxRateID
	m.Code = p.Code
	m.Brand = p.Brand
	m.Name = p.Name
	m.ExpiresAt = p.ExpiresAt
	m.Image = p.Image
	m.Price = p.Price
	m.Stock = p.Stock
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// TaxRateModel is the persistence model for the TaxRate domain entity.
type TaxRateModel struct {
	BaseModel
	Percentage  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Description string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (TaxRateModel) TableName() string {
	return "tax_rates"
}

// ToDomain converts the persistence model to a domain TaxRate.
func (m *TaxRateModel) ToDomain() *catalog.TaxRate {
	return &catalog.TaxRate{
		BaseEntity:  m.BaseModel.ToDomain(),
		Percentage:  m.Percentage,
		Description: m.Description,
	}
}

// TaxRateModelFromDomain creates a persistence model from a domain TaxRate.
func TaxRateModelFromDomain(t *catalog.TaxRate) *TaxRateModel {
	m := &TaxRateModel{
		Percentage:  t.Percentage,
		Description: t.Description,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
