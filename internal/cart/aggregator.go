package cart

import (
	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

// Aggregator keeps cart items in insertion order and prices them. It is not
// safe for concurrent use; the owning controller serializes access.
type Aggregator struct {
	items []LineItem
	calc  pricing.Calculator
}

// NewAggregator returns an empty cart priced with calc.
func NewAggregator(calc pricing.Calculator) *Aggregator {
	return &Aggregator{calc: calc}
}

// Add appends item.
func (a *Aggregator) Add(item LineItem) error {
	if err := item.validate(); err != nil {
		return err
	}
	a.items = append(a.items, item.Clone())
	return nil
}

// RemoveAt deletes the item at index.
func (a *Aggregator) RemoveAt(index int) (LineItem, error) {
	if index < 0 || index >= len(a.items) {
		return LineItem{}, pkgerrors.Newf(pkgerrors.CodeValidation, "cart has no item at position %d", index).
			WithDetails(map[string]any{"index": index, "len": len(a.items)})
	}
	removed := a.items[index]
	a.items = append(a.items[:index:index], a.items[index+1:]...)
	return removed, nil
}

// Items returns a deep copy of the cart contents.
func (a *Aggregator) Items() []LineItem {
	out := make([]LineItem, len(a.items))
	for i, item := range a.items {
		out[i] = item.Clone()
	}
	return out
}

func (a *Aggregator) Len() int {
	return len(a.items)
}

func (a *Aggregator) IsEmpty() bool {
	return len(a.items) == 0
}

// Clear empties the cart.
func (a *Aggregator) Clear() {
	a.items = nil
}

// TotalPairs counts pairs across every item.
func (a *Aggregator) TotalPairs() int {
	total := 0
	for _, item := range a.items {
		total += item.Quantity
	}
	return total
}

// Aggregate prices the cart under mode and policy in full precision.
func (a *Aggregator) Aggregate(mode enums.Mode, policy pricing.TaxPolicy) pricing.Breakdown {
	lines := make([]pricing.Line, len(a.items))
	for i, item := range a.items {
		lines[i] = item.pricingLine()
	}
	return a.calc.Aggregate(lines, mode, policy)
}

// OrderLines converts every item for submission.
func (a *Aggregator) OrderLines() []types.OrderLine {
	lines := make([]types.OrderLine, len(a.items))
	for i, item := range a.items {
		lines[i] = item.OrderLine()
	}
	return lines
}
