// Package pricing holds the storefront price arithmetic. Amounts accumulate
// in full decimal precision and are rounded to whole currency units only when
// displayed or submitted.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

// DefaultGSTRate is the goods and services tax applied to wholesale amounts.
var DefaultGSTRate = decimal.RequireFromString("0.12")

// Breakdown is a full precision subtotal/tax/total triple.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// DisplayBreakdown is a Breakdown rounded for presentation.
type DisplayBreakdown struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Rounded applies Display to every figure independently.
func (b Breakdown) Rounded() DisplayBreakdown {
	return DisplayBreakdown{
		Subtotal: Display(b.Subtotal),
		Tax:      Display(b.Tax),
		Total:    Display(b.Total),
	}
}

// Add sums two breakdowns figure by figure.
func (b Breakdown) Add(other Breakdown) Breakdown {
	return Breakdown{
		Subtotal: b.Subtotal.Add(other.Subtotal),
		Tax:      b.Tax.Add(other.Tax),
		Total:    b.Total.Add(other.Total),
	}
}

// MaxPairsPerSize bounds the pairs a single size entry may request.
const MaxPairsPerSize = 100_000

// TotalPairs sums a size to quantity mapping. Negative entries contribute
// nothing. An entry above MaxPairsPerSize, or a sum that does not fit in an
// int, is a validation error.
func TotalPairs[M ~map[K]V, K comparable, V ~int](quantities M) (int, error) {
	total := 0
	for size, qty := range quantities {
		if qty <= 0 {
			continue
		}
		if int(qty) > MaxPairsPerSize {
			return 0, QuantityTooLarge(fmt.Sprint(size), int(qty))
		}
		if total > math.MaxInt-int(qty) {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "total pairs overflow")
		}
		total += int(qty)
	}
	return total, nil
}

// QuantityTooLarge reports a size entry above MaxPairsPerSize.
func QuantityTooLarge(size string, qty int) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeValidation,
		"size %s asks for %d pairs; at most %d are allowed per size", size, qty, MaxPairsPerSize).
		WithDetails(map[string]any{"size": size, "quantity": qty, "max": MaxPairsPerSize})
}

// ParseQuantity normalises raw keyboard input into a pair count. Blank,
// non-numeric, fractional and negative input all become zero. Counts above
// MaxPairsPerSize are rejected.
func ParseQuantity(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(trimmed)
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && !strings.HasPrefix(trimmed, "-") {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity %s is too large; at most %d pairs are allowed per size", trimmed, MaxPairsPerSize)
	}
	if err != nil || n < 0 {
		return 0, nil
	}
	if n > MaxPairsPerSize {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity %d is too large; at most %d pairs are allowed per size", n, MaxPairsPerSize)
	}
	return n, nil
}

func LineTotal(unitPrice decimal.Decimal, pairs int) decimal.Decimal {
	if pairs <= 0 {
		return decimal.Zero
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(pairs)))
}

// MeetsMinimum reports whether pairs satisfies moq. Zero pairs never meets a
// positive minimum.
func MeetsMinimum(pairs, moq int) bool {
	return pairs >= moq
}

// UnitPrice picks the wholesale price in wholesale mode and the retail price
// otherwise.
func UnitPrice(retail, wholesale decimal.Decimal, mode enums.Mode) decimal.Decimal {
	if mode.IsWholesale() {
		return wholesale
	}
	return retail
}

// Display rounds half up to the nearest whole currency unit.
func Display(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}

// ApplyTax computes the breakdown for amount under mode at the default rate.
func ApplyTax(amount decimal.Decimal, mode enums.Mode) Breakdown {
	return Default.ApplyTax(amount, mode)
}

// InverseTax derives a display-only breakdown from a stored total at the
// default rate.
func InverseTax(total decimal.Decimal, mode enums.Mode) Breakdown {
	return Default.InverseTax(total, mode)
}
