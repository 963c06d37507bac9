package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

var (
	ErrCartEmpty           = shared.NewDomainError("CART_EMPTY", "Cart cannot be empty")
	ErrPendingSaleNotFound = shared.NewDomainError("PENDING_SALE_NOT_FOUND", "No pending cart found for user")
	ErrDuplicateProduct    = shared.NewDomainError("DUPLICATE_PRODUCT", "Each product may appear only once per cart")
)

// Sale is one purchase session. At most one PENDIENTE sale per user is read
// back as the current cart; the application layer keeps that invariant.
type Sale struct {
	shared.BaseAggregateRoot
	UserID   uuid.UUID
	SaleDate time.Time
	Total    decimal.Decimal
	Status   SaleStatus
	Items    []CartItem
}

// NewSale opens a pending sale with total 0.
func NewSale(userID uuid.UUID) (*Sale, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Total:             decimal.Zero,
		Status:            SaleStatusPending,
		Items:             make([]CartItem, 0),
	}
	sale.SaleDate = sale.CreatedAt

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))

	return sale, nil
}

// ValidateLines rejects an empty or malformed submission.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrCartEmpty
	}
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return err
		}
		if _, dup := seen[line.ProductID]; dup {
			return ErrDuplicateProduct.WithDetails(map[string]any{"product_id": line.ProductID})
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// MergeLines reconciles a submission against the active lines: matching
// products are repriced in place, new products are appended and active lines
// missing from the submission are marked ELIMINADO.
func (s *Sale) MergeLines(lines []Line) error {
	if err := s.ensurePending("update cart of"); err != nil {
		return err
	}
	if err := ValidateLines(lines); err != nil {
		return err
	}

	active := make(map[uuid.UUID]int, len(s.Items))
	for idx := range s.Items {
		if s.Items[idx].IsActive() {
			active[s.Items[idx].ProductID] = idx
		}
	}

	submitted := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		submitted[line.ProductID] = struct{}{}
		if idx, ok := active[line.ProductID]; ok {
			s.Items[idx].reprice(line)
			continue
		}
		s.Items = append(s.Items, newCartItem(s.ID, s.UserID, line))
	}

	for productID, idx := range active {
		if _, keep := submitted[productID]; keep {
			continue
		}
		if err := s.Items[idx].transition(ItemStatusRemoved); err != nil {
			return err
		}
	}

	s.recalculateTotal()
	return nil
}

// ReplaceLines drops every active line and rebuilds the cart from the
// submission. It returns the IDs of the dropped lines so the caller can
// delete their rows.
func (s *Sale) ReplaceLines(lines []Line) ([]uuid.UUID, error) {
	if err := s.ensurePending("replace cart of"); err != nil {
		return nil, err
	}
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}

	dropped := make([]uuid.UUID, 0, len(s.Items))
	kept := make([]CartItem, 0, len(s.Items)+len(lines))
	for _, item := range s.Items {
		if item.IsActive() {
			dropped = append(dropped, item.ID)
			continue
		}
		kept = append(kept, item)
	}
	for _, line := range lines {
		kept = append(kept, newCartItem(s.ID, s.UserID, line))
	}
	s.Items = kept

	s.recalculateTotal()
	return dropped, nil
}

// Confirm closes the sale as CONFIRMADO. Stock must already have been
// validated and decremented in the same unit of work.
func (s *Sale) Confirm(at time.Time) error {
	if !s.Status.CanTransitionTo(SaleStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm sale in %s status", s.Status))
	}
	if len(s.ActiveItems()) == 0 {
		return ErrCartEmpty
	}

	for idx := range s.Items {
		if !s.Items[idx].IsActive() {
			continue
		}
		if err := s.Items[idx].transition(ItemStatusSold); err != nil {
			return err
		}
	}

	s.Status = SaleStatusConfirmed
	s.SaleDate = at
	s.UpdatedAt = at

	s.AddDomainEvent(NewSaleConfirmedEvent(s))

	return nil
}

// Abandon marks the sale and every line, whatever its state, as ABANDONADO.
func (s *Sale) Abandon(at time.Time) error {
	if !s.Status.CanTransitionTo(SaleStatusAbandoned) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot abandon sale in %s status", s.Status))
	}

	for idx := range s.Items {
		item := &s.Items[idx]
		item.Status = ItemStatusAbandoned
		stamp := at
		item.AbandonedAt = &stamp
		item.UpdatedAt = at
	}

	s.Status = SaleStatusAbandoned
	s.UpdatedAt = at

	s.AddDomainEvent(NewSaleAbandonedEvent(s))

	return nil
}

// ActiveItems returns the ACTIVO lines.
func (s *Sale) ActiveItems() []CartItem {
	items := make([]CartItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.IsActive() {
			items = append(items, item)
		}
	}
	return items
}

// ActiveTotal sums the subtotals of ACTIVO lines.
func (s *Sale) ActiveTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		if item.IsActive() {
			total = total.Add(item.Subtotal)
		}
	}
	return total
}

// IsPending reports whether the sale still accepts cart writes.
func (s *Sale) IsPending() bool {
	return s.Status == SaleStatusPending
}

// IsOwnedBy reports whether the sale belongs to the given user.
func (s *Sale) IsOwnedBy(userID uuid.UUID) bool {
	return s.UserID == userID
}

func (s *Sale) recalculateTotal() {
	s.Total = s.ActiveTotal()
	s.UpdatedAt = time.Now()
}

func (s *Sale) ensurePending(action string) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot %s a sale in %s status", action, s.Status))
	}
	return nil
}
