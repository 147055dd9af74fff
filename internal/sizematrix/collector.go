// Package sizematrix collects per-size quantities for one wholesale batch.
//
// A Collector is Closed until Open is called for a product. While Open every
// Set updates the mapping and Preview recomputes totals; only Commit enforces
// the product's minimum order quantity.
package sizematrix

import (
	"time"

	"github.com/angelmondragon/shoefinderz-backend/internal/cart"
	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// Preview is the live view of an open matrix.
type Preview struct {
	Product    catalog.Product
	Quantities catalog.SizeQuantities
	TotalPairs int
	MOQ        int
	MeetsMOQ   bool
	Breakdown  pricing.Breakdown
	Display    pricing.DisplayBreakdown
}

// Collector is the size matrix state machine.
type Collector struct {
	calc       pricing.Calculator
	now        func() time.Time
	state      State
	product    catalog.Product
	quantities catalog.SizeQuantities
}

// NewCollector returns a closed collector pricing previews with calc.
func NewCollector(calc pricing.Calculator, now func() time.Time) *Collector {
	if now == nil {
		now = time.Now
	}
	return &Collector{calc: calc, now: now, state: StateClosed}
}

func (c *Collector) State() State {
	return c.state
}

func (c *Collector) IsOpen() bool {
	return c.state == StateOpen
}

// Product returns the product being collected for, if open.
func (c *Collector) Product() (catalog.Product, bool) {
	if c.state != StateOpen {
		return catalog.Product{}, false
	}
	return c.product, true
}

// Open starts a batch for product with every offered size at zero.
func (c *Collector) Open(product catalog.Product) error {
	if c.state == StateOpen {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "a size matrix for %s is already open", c.product.Name)
	}
	if len(product.Sizes) == 0 {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%s has no sizes to order", product.Name)
	}
	c.product = product.Clone()
	c.quantities = make(catalog.SizeQuantities, len(product.Sizes))
	for _, size := range product.Sizes.Keys() {
		c.quantities[size] = 0
	}
	c.state = StateOpen
	return nil
}

// Set records the raw keystroke value for size. Unparseable or negative
// input is stored as zero; a count above pricing.MaxPairsPerSize is rejected
// and the previous value kept. The size must be one the product offers.
func (c *Collector) Set(size string, raw string) error {
	if c.state != StateOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no size matrix is open")
	}
	key, err := catalog.ParseSize(size)
	if err != nil || !c.product.Sizes.Contains(key) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "size %s is not offered for %s", size, c.product.Name).
			WithDetails(map[string]any{"sizes": c.product.Sizes.String()})
	}
	qty, err := pricing.ParseQuantity(raw)
	if err != nil {
		return err
	}
	c.quantities[key] = qty
	return nil
}

// SetAll applies every entry of raw. It stops at the first invalid size.
func (c *Collector) SetAll(raw map[string]string) error {
	for size, value := range raw {
		if err := c.Set(size, value); err != nil {
			return err
		}
	}
	return nil
}

// Preview recomputes totals for display. It never blocks on the MOQ.
func (c *Collector) Preview() (Preview, error) {
	if c.state != StateOpen {
		return Preview{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no size matrix is open")
	}
	pairs, err := pricing.TotalPairs(c.quantities)
	if err != nil {
		return Preview{}, err
	}
	subtotal := pricing.LineTotal(c.product.UnitPrice(enums.ModeWholesale), pairs)
	breakdown := c.calc.ApplyTax(subtotal, enums.ModeWholesale)
	return Preview{
		Product:    c.product,
		Quantities: c.quantities.Clone(),
		TotalPairs: pairs,
		MOQ:        c.product.MOQ,
		MeetsMOQ:   pricing.MeetsMinimum(pairs, c.product.MOQ),
		Breakdown:  breakdown,
		Display:    breakdown.Rounded(),
	}, nil
}

// Commit emits the batch as a wholesale cart item and closes the matrix.
// Below the MOQ, including an all-zero matrix, nothing is emitted and the
// matrix stays open.
func (c *Collector) Commit() (cart.LineItem, error) {
	if c.state != StateOpen {
		return cart.LineItem{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no size matrix is open")
	}
	pairs, err := pricing.TotalPairs(c.quantities)
	if err != nil {
		return cart.LineItem{}, err
	}
	if pairs == 0 || !pricing.MeetsMinimum(pairs, c.product.MOQ) {
		return cart.LineItem{}, pricing.MinimumNotMet(c.product.Name, c.product.MOQ, pairs)
	}
	item, err := cart.NewWholesaleItem(c.product, c.quantities, c.now())
	if err != nil {
		return cart.LineItem{}, err
	}
	c.reset()
	return item, nil
}

// Cancel discards the mapping.
func (c *Collector) Cancel() {
	c.reset()
}

func (c *Collector) reset() {
	c.state = StateClosed
	c.product = catalog.Product{}
	c.quantities = nil
}
