package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID loads a sale with all of its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestPending returns the user's newest pending sale
func (r *GormSaleRepository) FindLatestPending(ctx context.Context, userID uuid.UUID) (*sales.Sale, error) {
	return r.findLatestPending(r.db.WithContext(ctx), userID)
}

// FindLatestPendingForUpdate locks the sale row with FOR UPDATE. Items are
// read after the lock is held, so they reflect the last committed writer.
func (r *GormSaleRepository) FindLatestPendingForUpdate(ctx context.Context, userID uuid.UUID) (*sales.Sale, error) {
	return r.findLatestPending(
		r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		userID,
	)
}

func (r *GormSaleRepository) findLatestPending(db *gorm.DB, userID uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := db.
		Where("user_id = ? AND status = ?", userID, sales.SaleStatusPending).
		Order("created_at DESC").
		Preload("Items", preloadItems).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllPending returns every pending sale of the user with items
func (r *GormSaleRepository) FindAllPending(ctx context.Context, userID uuid.UUID) ([]*sales.Sale, error) {
	var list []models.SaleModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, sales.SaleStatusPending).
		Order("created_at ASC").
		Preload("Items", preloadItems).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return toDomainSales(list), nil
}

// FindByUser lists a user's sales, newest first by default
func (r *GormSaleRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*sales.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).Where("user_id = ?", userID)
	return r.page(query, filter)
}

// FindAll lists every sale, optionally narrowed by filter.Filters["status"]
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*sales.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{})
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", fmt.Sprint(status))
	}
	return r.page(query, filter)
}

func (r *GormSaleRepository) page(query *gorm.DB, filter shared.Filter) ([]*sales.Sale, int64, error) {
	filter = filter.Normalize()
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.SaleModel
	if err := query.
		Clauses(saleOrder(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return toDomainSales(list), total, nil
}

// Save upserts the sale row and every item row
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(models.SaleModelFromDomain(sale)).Error; err != nil {
			return err
		}
		if len(sale.Items) == 0 {
			return nil
		}

		items := make([]models.CartItemModel, len(sale.Items))
		for i, item := range sale.Items {
			items[i] = models.CartItemModelFromDomain(item)
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "unit_price", "tax_amount", "subtotal",
				"status", "abandoned_at", "updated_at",
			}),
		}).Create(&items).Error
	})
}

// DeleteItems hard-deletes item rows by ID
func (r *GormSaleRepository) DeleteItems(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.CartItemModel{}).Error
}

func toDomainSales(list []models.SaleModel) []*sales.Sale {
	out := make([]*sales.Sale, len(list))
	for i := range list {
		out[i] = list[i].ToDomain()
	}
	return out
}

var _ sales.SaleRepository = (*GormSaleRepository)(nil)
