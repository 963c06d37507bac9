package sales

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CheckoutService closes pending sales, either as a purchase or abandoned.
type CheckoutService struct {
	txScope    TransactionScope
	reconciler *StockReconciler
	metrics    Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(txScope TransactionScope, reconciler *StockReconciler, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reconciler == nil {
		reconciler = NewStockReconciler()
	}
	return &CheckoutService{
		txScope:    txScope,
		reconciler: reconciler,
		metrics:    noopMetrics{},
		logger:     logger,
		now:        time.Now,
	}
}

// SetMetrics sets the business metrics recorder
func (s *CheckoutService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// SetClock overrides the time source
func (s *CheckoutService) SetClock(now func() time.Time) {
	s.now = now
}

// Confirm turns the user's pending sale into a purchase. The sale row and
// every product row stay locked until commit.
func (s *CheckoutService) Confirm(ctx context.Context, actor identity.Actor) (*ConfirmResponse, error) {
	if err := actor.Require("confirm a purchase", identity.RoleCustomer); err != nil {
		return nil, err
	}

	started := time.Now()
	var resp *ConfirmResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindLatestPendingForUpdate(ctx, actor.UserID)
		if errors.Is(err, shared.ErrNotFound) {
			return sales.ErrPendingSaleNotFound
		}
		if err != nil {
			return err
		}

		active := sale.ActiveItems()
		if len(active) == 0 {
			return sales.ErrCartEmpty
		}

		updates, err := s.reconciler.Reconcile(ctx, repos.ProductRepo(), active)
		if err != nil {
			return err
		}

		if err := sale.Confirm(s.now()); err != nil {
			return err
		}
		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}
		if err := saveEvents(ctx, repos.OutboxRepo(), sale); err != nil {
			return err
		}

		resp = &ConfirmResponse{
			SaleID:       sale.ID,
			Status:       sale.Status.String(),
			Total:        sale.Total,
			SaleDate:     sale.SaleDate,
			ItemsCount:   len(active),
			StockUpdates: updates,
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordConfirmationFailure(ctx, failureReason(err))
		s.logger.Info("purchase confirmation rejected",
			zap.String("user_id", actor.UserID.String()),
			zap.Error(err))
		return nil, err
	}

	s.metrics.RecordConfirmation(ctx, resp.Total, resp.ItemsCount, time.Since(started))
	s.logger.Info("purchase confirmed",
		zap.String("sale_id", resp.SaleID.String()),
		zap.String("user_id", actor.UserID.String()),
		zap.String("total", resp.Total.String()),
		zap.Int("items", resp.ItemsCount))
	return resp, nil
}

// Abandon clears every pending sale of the user. Having nothing to clear
// is not an error.
func (s *CheckoutService) Abandon(ctx context.Context, actor identity.Actor) (*AbandonResponse, error) {
	if err := actor.Require("abandon a cart", identity.RoleCustomer); err != nil {
		return nil, err
	}
	resp := &AbandonResponse{}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		pending, err := repos.SaleRepo().FindAllPending(ctx, actor.UserID)
		if err != nil {
			return err
		}

		at := s.now()
		for _, sale := range pending {
			if err := sale.Abandon(at); err != nil {
				return err
			}
			if err := repos.SaleRepo().Save(ctx, sale); err != nil {
				return err
			}
			if err := saveEvents(ctx, repos.OutboxRepo(), sale); err != nil {
				return err
			}
			resp.AbandonedSales++
			resp.AbandonedItems += len(sale.Items)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.AbandonedSales > 0 {
		s.metrics.RecordAbandonment(ctx, resp.AbandonedSales)
	}
	return resp, nil
}

func failureReason(err error) string {
	if de, ok := shared.AsDomainError(err); ok {
		return de.Code
	}
	if errors.Is(err, shared.ErrInsufficientStock) {
		return shared.ErrInsufficientStock.Code
	}
	return "INTERNAL"
}
