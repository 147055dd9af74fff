package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
)

// TaxPolicy selects which mode decides a cart line's tax treatment.
type TaxPolicy string

const (
	// TaxPolicyCartMode taxes every line under the mode active when the cart
	// is aggregated, so toggling the mode re-prices tax on existing lines.
	TaxPolicyCartMode TaxPolicy = "cart_mode"
	// TaxPolicyLineMode taxes each line under the mode it was added with.
	TaxPolicyLineMode TaxPolicy = "line_mode"
)

func (p TaxPolicy) String() string {
	return string(p)
}

func (p TaxPolicy) IsValid() bool {
	return p == TaxPolicyCartMode || p == TaxPolicyLineMode
}

// ParseTaxPolicy converts raw configuration into a TaxPolicy. Blank input
// selects TaxPolicyCartMode.
func ParseTaxPolicy(value string) (TaxPolicy, error) {
	normalized := TaxPolicy(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return TaxPolicyCartMode, nil
	}
	if !normalized.IsValid() {
		return "", fmt.Errorf("invalid tax policy %q", value)
	}
	return normalized, nil
}

// Line is the pricing view of one cart or order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Mode      enums.Mode
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return LineTotal(l.UnitPrice, l.Quantity)
}

// Calculator applies a fixed wholesale tax rate.
type Calculator struct {
	rate decimal.Decimal
}

// Default uses DefaultGSTRate.
var Default = Calculator{rate: DefaultGSTRate}

// NewCalculator returns a calculator for rate. Negative rates are rejected.
func NewCalculator(rate decimal.Decimal) (Calculator, error) {
	if rate.IsNegative() {
		return Calculator{}, fmt.Errorf("tax rate must not be negative, got %s", rate)
	}
	return Calculator{rate: rate}, nil
}

func (c Calculator) Rate() decimal.Decimal {
	return c.rate
}

// ApplyTax returns the breakdown for amount. Wholesale amounts attract tax at
// the calculator rate; retail amounts are untaxed.
func (c Calculator) ApplyTax(amount decimal.Decimal, mode enums.Mode) Breakdown {
	if !mode.IsWholesale() {
		return Breakdown{Subtotal: amount, Tax: decimal.Zero, Total: amount}
	}
	tax := amount.Mul(c.rate)
	return Breakdown{Subtotal: amount, Tax: tax, Total: amount.Add(tax)}
}

// InverseTax splits a tax-inclusive total back into subtotal and tax. The
// result is for presentation only.
func (c Calculator) InverseTax(total decimal.Decimal, mode enums.Mode) Breakdown {
	if !mode.IsWholesale() {
		return Breakdown{Subtotal: total, Tax: decimal.Zero, Total: total}
	}
	subtotal := total.Div(decimal.NewFromInt(1).Add(c.rate))
	return Breakdown{Subtotal: subtotal, Tax: total.Sub(subtotal), Total: total}
}

// Aggregate prices a sequence of lines. Under TaxPolicyCartMode the summed
// subtotal is taxed once under mode; under TaxPolicyLineMode each line is
// taxed under its own mode.
func (c Calculator) Aggregate(lines []Line, mode enums.Mode, policy TaxPolicy) Breakdown {
	if policy == TaxPolicyLineMode {
		total := Breakdown{Subtotal: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
		for _, line := range lines {
			total = total.Add(c.ApplyTax(line.Subtotal(), line.Mode))
		}
		return total
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal())
	}
	return c.ApplyTax(subtotal, mode)
}
