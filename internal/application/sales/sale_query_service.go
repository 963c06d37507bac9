package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SaleQueryService serves read-only views of the sale ledger.
type SaleQueryService struct {
	saleRepo    sales.SaleRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	nameLocale  language.Tag
	logger      *zap.Logger
}

// NewSaleQueryService creates a new SaleQueryService
func NewSaleQueryService(
	saleRepo sales.SaleRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *SaleQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleQueryService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		nameLocale:  language.Spanish,
		logger:      logger,
	}
}

// ListMine returns the caller's own sales, newest first.
func (s *SaleQueryService) ListMine(ctx context.Context, actor identity.Actor, filter ListSalesFilter) (*shared.Paginated[SaleSummary], error) {
	f := toDomainFilter(filter)
	list, total, err := s.saleRepo.FindByUser(ctx, actor.UserID, f)
	if err != nil {
		return nil, err
	}

	items := make([]SaleSummary, len(list))
	for i, sale := range list {
		items[i] = toSaleSummary(sale)
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// ListAll returns every user's sales with customer names. Administrators only.
func (s *SaleQueryService) ListAll(ctx context.Context, actor identity.Actor, filter ListSalesFilter) (*shared.Paginated[SaleSummary], error) {
	if err := actor.Require("list all sales", identity.RoleAdministrator); err != nil {
		return nil, err
	}

	f := toDomainFilter(filter)
	list, total, err := s.saleRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}

	names := s.customerNames(ctx, list)
	items := make([]SaleSummary, len(list))
	for i, sale := range list {
		items[i] = toSaleSummary(sale)
		items[i].CustomerName = names[sale.UserID]
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Get returns a sale with all of its lines. Customers only see their own
// sales; anything else reads as not found.
func (s *SaleQueryService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*SaleDetail, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(identity.RoleAdministrator) && !sale.IsOwnedBy(actor.UserID) {
		return nil, shared.ErrNotFound
	}

	ids := make([]uuid.UUID, 0, len(sale.Items))
	for _, item := range sale.Items {
		ids = append(ids, item.ProductID)
	}
	productNames := make(map[uuid.UUID]string, len(ids))
	if len(ids) > 0 {
		products, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			productNames[p.ID] = p.Name
		}
	}

	detail := &SaleDetail{
		SaleSummary: toSaleSummary(sale),
		Items:       make([]SaleItemView, len(sale.Items)),
	}
	detail.CustomerName = s.customerNames(ctx, []*sales.Sale{sale})[sale.UserID]
	for i, item := range sale.Items {
		detail.Items[i] = SaleItemView{
			CartItemResponse: toCartItemResponse(item),
			ProductName:      productNames[item.ProductID],
			AbandonedAt:      item.AbandonedAt,
		}
	}
	return detail, nil
}

// customerNames maps user ids to title-cased full names. Lookup failures
// only cost the names.
func (s *SaleQueryService) customerNames(ctx context.Context, list []*sales.Sale) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(list))
	if len(list) == 0 {
		return names
	}

	seen := make(map[uuid.UUID]struct{}, len(list))
	ids := make([]uuid.UUID, 0, len(list))
	for _, sale := range list {
		if _, ok := seen[sale.UserID]; ok {
			continue
		}
		seen[sale.UserID] = struct{}{}
		ids = append(ids, sale.UserID)
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load customer names", zap.Error(err))
		return names
	}
	caser := cases.Title(s.nameLocale)
	for _, u := range users {
		names[u.ID] = caser.String(u.Person.FullName())
	}
	return names
}

func toDomainFilter(filter ListSalesFilter) shared.Filter {
	f := shared.DefaultFilter()
	f.Page = filter.Page
	f.PageSize = filter.PageSize
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	return f.Normalize()
}
