package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTaxRateRepository implements TaxRateRepository using GORM
type GormTaxRateRepository struct {
	db *gorm.DB
}

// NewGormTaxRateRepository creates a new GormTaxRateRepository
func NewGormTaxRateRepository(db *gorm.DB) *GormTaxRateRepository {
	return &GormTaxRateRepository{db: db}
}

// FindByID finds a tax rate by its ID
func (r *GormTaxRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.TaxRate, error) {
	var model models.TaxRateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists tax rates by ascending percentage
func (r *GormTaxRateRepository) FindAll(ctx context.Context) ([]*catalog.TaxRate, error) {
	var list []models.TaxRateModel
	if err := r.db.WithContext(ctx).Order("percentage ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.TaxRate, len(list))
	for i := range list {
		out[i] = list[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a tax rate
func (r *GormTaxRateRepository) Save(ctx context.Context, rate *catalog.TaxRate) error {
	return r.db.WithContext(ctx).Save(models.TaxRateModelFromDomain(rate)).Error
}

var _ catalog.TaxRateRepository = (*GormTaxRateRepository)(nil)
