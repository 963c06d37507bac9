package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// TaxRateResponse represents a tax rate in API responses
type TaxRateResponse struct {
	ID          uuid.UUID       `json:"id"`
	Percentage  decimal.Decimal `json:"percentage"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToTaxRateResponse converts a domain TaxRate to TaxRateResponse
func ToTaxRateResponse(r *catalog.TaxRate) TaxRateResponse {
	return TaxRateResponse{
		ID:          r.ID,
		Percentage:  r.Percentage,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

// TaxRateService exposes read access to tax rates.
type TaxRateService struct {
	taxRateRepo catalog.TaxRateRepository
}

// NewTaxRateService creates a new TaxRateService
func NewTaxRateService(taxRateRepo catalog.TaxRateRepository) *TaxRateService {
	return &TaxRateService{taxRateRepo: taxRateRepo}
}

// List returns every tax rate
func (s *TaxRateService) List(ctx context.Context) ([]TaxRateResponse, error) {
	rates, err := s.taxRateRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]TaxRateResponse, len(rates))
	for i, r := range rates {
		responses[i] = ToTaxRateResponse(r)
	}
	return responses, nil
}

// GetByID returns a single tax rate
func (s *TaxRateService) GetByID(ctx context.Context, id uuid.UUID) (*TaxRateResponse, error) {
	rate, err := s.taxRateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTaxRateResponse(rate)
	return &resp, nil
}
