package sales

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineAmounts is the priced breakdown of one cart line.
type LineAmounts struct {
	Base     decimal.Decimal // unit price × quantity
	Tax      decimal.Decimal
	Subtotal decimal.Decimal // base + tax
}

// ComputeLine prices a line: tax = base × rate/100 rounded to cents and
// subtotal = base + tax. Sale totals sum these rounded subtotals, so the total
// always equals the sum of its active lines.
func ComputeLine(unitPrice decimal.Decimal, quantity int, ratePercent decimal.Decimal) LineAmounts {
	base := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	tax := base.Mul(ratePercent).Div(hundred).Round(2)
	return LineAmounts{
		Base:     base,
		Tax:      tax,
		Subtotal: base.Add(tax),
	}
}

// DisplayRound rounds an amount to whole currency units, half away from zero.
// Only used when rendering responses.
func DisplayRound(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
