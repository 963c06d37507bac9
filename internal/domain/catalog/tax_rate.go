package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

var ErrTaxRateNotFound = shared.NewDomainError("TAX_RATE_NOT_FOUND", "Tax rate not found")

// TaxRate is a percentage applied to a line's price.
type TaxRate struct {
	shared.BaseEntity
	Percentage  decimal.Decimal
	Description string
}

// NewTaxRate creates a tax rate between 0 and 100 percent.
func NewTaxRate(percentage decimal.Decimal, description string) (*TaxRate, error) {
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	return &TaxRate{
		BaseEntity:  shared.NewBaseEntity(),
		Percentage:  percentage.Round(2),
		Description: description,
	}, nil
}
