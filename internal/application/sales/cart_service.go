package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartService maintains a customer's pending sale from client cart snapshots.
type CartService struct {
	txScope     TransactionScope
	saleRepo    sales.SaleRepository
	productRepo catalog.ProductRepository
	taxRater    TaxRater
	images      ImageURLResolver
	metrics     Metrics
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	txScope TransactionScope,
	saleRepo sales.SaleRepository,
	productRepo catalog.ProductRepository,
	taxRater TaxRater,
	images ImageURLResolver,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		txScope:     txScope,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		taxRater:    taxRater,
		images:      images,
		metrics:     noopMetrics{},
		logger:      logger,
	}
}

// SetMetrics sets the business metrics recorder
func (s *CartService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// SubmitCart merges the submitted cart into the user's pending sale,
// opening one when none exists. Lines for products no longer in the
// submission are marked ELIMINADO.
func (s *CartService) SubmitCart(ctx context.Context, actor identity.Actor, req SubmitCartRequest) (*CartWriteResponse, error) {
	if err := actor.Require("modify a cart", identity.RoleCustomer); err != nil {
		return nil, err
	}
	lines, err := s.resolveLines(ctx, req)
	if err != nil {
		return nil, err
	}

	var result *sales.Sale
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := ensureProductsExist(ctx, repos.ProductRepo(), lines); err != nil {
			return err
		}
		sale, err := repos.SaleRepo().FindLatestPendingForUpdate(ctx, actor.UserID)
		if errors.Is(err, shared.ErrNotFound) {
			sale, err = sales.NewSale(actor.UserID)
		}
		if err != nil {
			return err
		}

		if err := sale.MergeLines(lines); err != nil {
			return err
		}
		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}
		if err := saveEvents(ctx, repos.OutboxRepo(), sale); err != nil {
			return err
		}
		result = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCartWrite(ctx, "merge", len(lines))
	return ToCartWriteResponse(result), nil
}

// ReplaceCart rebuilds the pending sale's active lines from the submission.
// The previous active lines are deleted outright.
func (s *CartService) ReplaceCart(ctx context.Context, actor identity.Actor, req SubmitCartRequest) (*CartWriteResponse, error) {
	if err := actor.Require("modify a cart", identity.RoleCustomer); err != nil {
		return nil, err
	}
	lines, err := s.resolveLines(ctx, req)
	if err != nil {
		return nil, err
	}

	var result *sales.Sale
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := ensureProductsExist(ctx, repos.ProductRepo(), lines); err != nil {
			return err
		}
		sale, err := repos.SaleRepo().FindLatestPendingForUpdate(ctx, actor.UserID)
		if errors.Is(err, shared.ErrNotFound) {
			return sales.ErrPendingSaleNotFound
		}
		if err != nil {
			return err
		}

		dropped, err := sale.ReplaceLines(lines)
		if err != nil {
			return err
		}
		if err := repos.SaleRepo().DeleteItems(ctx, dropped); err != nil {
			return err
		}
		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}
		result = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCartWrite(ctx, "replace", len(lines))
	return ToCartWriteResponse(result), nil
}

// GetCurrentCart returns the most recent pending sale with product display
// data. A user without a pending sale gets an empty cart.
func (s *CartService) GetCurrentCart(ctx context.Context, actor identity.Actor) (*CartView, error) {
	sale, err := s.saleRepo.FindLatestPending(ctx, actor.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		return &CartView{Items: []CartLineView{}, Total: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}

	active := sale.ActiveItems()
	ids := make([]uuid.UUID, len(active))
	for i, item := range active {
		ids[i] = item.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]CartLineView, 0, len(active))
	total := decimal.Zero
	for _, item := range active {
		product, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn("cart line references missing product",
				zap.String("sale_id", sale.ID.String()),
				zap.String("product_id", item.ProductID.String()))
			continue
		}
		lines = append(lines, CartLineView{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Brand:       product.Brand,
			Stock:       product.Stock,
			TaxRateID:   product.TaxRateID,
			ImageURL:    s.images.Resolve(ctx, product.Image),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxAmount:   sales.DisplayRound(item.TaxAmount),
			Subtotal:    sales.DisplayRound(item.Subtotal),
		})
		total = total.Add(item.Subtotal)
	}

	saleID := sale.ID
	return &CartView{
		HasCart:    true,
		SaleID:     &saleID,
		Status:     sale.Status.String(),
		Items:      lines,
		ItemsCount: len(lines),
		Total:      sales.DisplayRound(total),
	}, nil
}

// ensureProductsExist fails with PRODUCT_NOT_FOUND naming the first
// submitted product the catalog does not know.
func ensureProductsExist(ctx context.Context, repo catalog.ProductRepository, lines []sales.Line) error {
	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	products, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return productNotFound(id)
		}
	}
	return nil
}

// resolveLines attaches each product's tax rate to the submitted lines.
func (s *CartService) resolveLines(ctx context.Context, req SubmitCartRequest) ([]sales.Line, error) {
	if len(req.Items) == 0 {
		return nil, sales.ErrCartEmpty
	}
	lines := make([]sales.Line, len(req.Items))
	for i, in := range req.Items {
		lines[i] = sales.Line{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		}
		if in.ProductID != uuid.Nil {
			lines[i].TaxRate = s.taxRater.RateFor(ctx, in.ProductID)
		}
	}
	if err := sales.ValidateLines(lines); err != nil {
		return nil, err
	}
	return lines, nil
}
