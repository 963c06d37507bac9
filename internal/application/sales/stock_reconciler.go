package sales

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/sales"
)

// StockReconciler takes the stock for a set of cart lines out of the
// catalog. It must run inside the confirming transaction.
type StockReconciler struct{}

// NewStockReconciler creates a new StockReconciler
func NewStockReconciler() *StockReconciler {
	return &StockReconciler{}
}

type demand struct {
	productID uuid.UUID
	quantity  int
}

// Reconcile locks every product referenced by items in ascending id order,
// checks that each can cover the requested quantity and only then decrements
// them. Nothing is written when any product is missing or short.
func (r *StockReconciler) Reconcile(ctx context.Context, products catalog.ProductRepository, items []sales.CartItem) ([]StockUpdate, error) {
	demands := aggregateDemand(items)
	if len(demands) == 0 {
		return []StockUpdate{}, nil
	}

	ids := make([]uuid.UUID, len(demands))
	for i, d := range demands {
		ids[i] = d.productID
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	locked, err := products.FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(locked))
	for _, p := range locked {
		byID[p.ID] = p
	}

	for _, d := range demands {
		product, ok := byID[d.productID]
		if !ok {
			return nil, productNotFound(d.productID)
		}
		if !product.HasStock(d.quantity) {
			return nil, catalog.NewInsufficientStockError(product, d.quantity)
		}
	}

	updates := make([]StockUpdate, 0, len(demands))
	for _, d := range demands {
		product := byID[d.productID]
		previous := product.Stock
		if err := product.DecreaseStock(d.quantity); err != nil {
			return nil, err
		}
		if err := products.UpdateStock(ctx, product); err != nil {
			return nil, err
		}
		updates = append(updates, StockUpdate{
			ProductID:     product.ID,
			ProductName:   product.Name,
			PreviousStock: previous,
			CurrentStock:  product.Stock,
			QuantitySold:  d.quantity,
		})
	}
	return updates, nil
}

// aggregateDemand sums quantities per product, keeping first-seen order.
func aggregateDemand(items []sales.CartItem) []demand {
	index := make(map[uuid.UUID]int, len(items))
	demands := make([]demand, 0, len(items))
	for _, item := range items {
		if idx, ok := index[item.ProductID]; ok {
			demands[idx].quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(demands)
		demands = append(demands, demand{productID: item.ProductID, quantity: item.Quantity})
	}
	return demands
}

func productNotFound(id uuid.UUID) error {
	err := *catalog.ErrProductNotFound
	err.Message = fmt.Sprintf("Product with ID %s not found", id)
	err.Details = map[string]any{"product_id": id.String()}
	return &err
}
