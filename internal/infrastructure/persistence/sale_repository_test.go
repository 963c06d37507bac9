package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(productID uuid.UUID, qty int, price, tax string) sales.Line {
	return sales.Line{
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
		TaxRate:   decimal.RequireFromString(tax),
	}
}

func newPendingSale(t *testing.T, userID uuid.UUID, lines ...sales.Line) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(userID)
	require.NoError(t, err)
	if len(lines) > 0 {
		require.NoError(t, sale.MergeLines(lines))
	}
	return sale
}

func TestGormSaleRepository_SaveAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	p1, p2 := uuid.New(), uuid.New()

	sale := newPendingSale(t, userID, line(p1, 2, "10.00", "19"), line(p2, 1, "5.50", "0"))
	require.NoError(t, repo.Save(ctx, sale))

	found, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, found.UserID)
	assert.Equal(t, sales.SaleStatusPending, found.Status)
	assert.True(t, sale.Total.Equal(found.Total), "total %s != %s", sale.Total, found.Total)
	require.Len(t, found.Items, 2)
	for _, item := range found.Items {
		assert.Equal(t, sale.ID, item.SaleID)
		assert.Equal(t, userID, item.UserID)
		assert.Equal(t, sales.ItemStatusActive, item.Status)
	}
	assert.Empty(t, found.GetDomainEvents())

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSaleRepository_MergeUpdatesItemsInPlace(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	sale := newPendingSale(t, userID, line(p1, 1, "10", "0"), line(p2, 1, "20", "0"))
	require.NoError(t, repo.Save(ctx, sale))

	loaded, err := repo.FindLatestPending(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, loaded.MergeLines([]sales.Line{line(p1, 3, "10", "0"), line(p3, 1, "7", "0")}))
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 3, "removed lines are kept as ELIMINADO")

	byProduct := map[uuid.UUID]sales.CartItem{}
	for _, item := range reloaded.Items {
		byProduct[item.ProductID] = item
	}
	assert.Equal(t, 3, byProduct[p1].Quantity)
	assert.Equal(t, sales.ItemStatusRemoved, byProduct[p2].Status)
	assert.Equal(t, sales.ItemStatusActive, byProduct[p3].Status)
	assert.True(t, decimal.NewFromInt(37).Equal(reloaded.Total))
}

func TestGormSaleRepository_ReplaceDeletesItems(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	sale := newPendingSale(t, userID, line(uuid.New(), 1, "10", "0"), line(uuid.New(), 1, "20", "0"))
	require.NoError(t, repo.Save(ctx, sale))

	replacement := uuid.New()
	dropped, err := sale.ReplaceLines([]sales.Line{line(replacement, 4, "2.50", "5")})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteItems(ctx, dropped))
	require.NoError(t, repo.Save(ctx, sale))

	reloaded, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, replacement, reloaded.Items[0].ProductID)
	assert.Equal(t, 4, reloaded.Items[0].Quantity)

	assert.NoError(t, repo.DeleteItems(ctx, nil))
}

func TestGormSaleRepository_FindLatestPending(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.FindLatestPending(ctx, userID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	older := newPendingSale(t, userID, line(uuid.New(), 1, "1", "0"))
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, older))

	newer := newPendingSale(t, userID, line(uuid.New(), 1, "2", "0"))
	require.NoError(t, repo.Save(ctx, newer))

	confirmed := newPendingSale(t, userID, line(uuid.New(), 1, "3", "0"))
	confirmed.CreatedAt = time.Now().Add(time.Hour)
	require.NoError(t, confirmed.Confirm(time.Now()))
	require.NoError(t, repo.Save(ctx, confirmed))

	latest, err := repo.FindLatestPending(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	locked, err := repo.FindLatestPendingForUpdate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, locked.ID)

	pending, err := repo.FindAllPending(ctx, userID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)
	assert.Len(t, pending[0].Items, 1)
}

func TestGormSaleRepository_AbandonPersistsItemState(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	sale := newPendingSale(t, uuid.New(), line(uuid.New(), 1, "1", "0"))
	require.NoError(t, repo.Save(ctx, sale))
	require.NoError(t, sale.Abandon(time.Now()))
	require.NoError(t, repo.Save(ctx, sale))

	reloaded, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.SaleStatusAbandoned, reloaded.Status)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, sales.ItemStatusAbandoned, reloaded.Items[0].Status)
	assert.NotNil(t, reloaded.Items[0].AbandonedAt)
}

func TestGormSaleRepository_Listing(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		sale := newPendingSale(t, alice, line(uuid.New(), 1, "1", "0"))
		sale.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		if i > 0 {
			require.NoError(t, sale.Confirm(time.Now()))
		}
		require.NoError(t, repo.Save(ctx, sale))
	}
	require.NoError(t, repo.Save(ctx, newPendingSale(t, bob, line(uuid.New(), 1, "1", "0"))))

	filter := shared.DefaultFilter()
	filter.PageSize = 2
	page, total, err := repo.FindByUser(ctx, alice, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt), "newest first")
	assert.Empty(t, page[0].Items, "listings do not load items")

	filter.Page = 2
	page, _, err = repo.FindByUser(ctx, alice, filter)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	all, total, err := repo.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)

	byStatus := shared.DefaultFilter()
	byStatus.Filters["status"] = string(sales.SaleStatusConfirmed)
	confirmed, total, err := repo.FindAll(ctx, byStatus)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, s := range confirmed {
		assert.Equal(t, sales.SaleStatusConfirmed, s.Status)
	}

	injected := shared.DefaultFilter()
	injected.OrderBy = "total; DROP TABLE sales"
	_, _, err = repo.FindAll(ctx, injected)
	assert.NoError(t, err)
}

func TestGormSaleRepository_FindLatestPendingForUpdate_LocksRow(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormSaleRepository(db.DB)
	userID, saleID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "sales" WHERE .*user_id = \$1 AND status = \$2.* ORDER BY created_at DESC.* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "total"}).
			AddRow(saleID.String(), userID.String(), "PENDIENTE", "0"))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE "cart_items"."sale_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sale_id"}))

	sale, err := repo.FindLatestPendingForUpdate(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, saleID, sale.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
