// Package cart holds the storefront's in-memory cart. The cart lives for one
// shopping session and becomes exactly one order.
package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

// LineItem is a committed cart entry. Product and UnitPrice are copies taken
// when the item was added.
type LineItem struct {
	Product   catalog.Product
	Mode      enums.Mode
	UnitPrice decimal.Decimal
	Quantity  int
	Sizes     catalog.SizeQuantities
	AddedAt   time.Time
}

// NewRetailItem returns a single pair of product at its retail price.
func NewRetailItem(product catalog.Product, now time.Time) LineItem {
	return LineItem{
		Product:   product.Clone(),
		Mode:      enums.ModeRetail,
		UnitPrice: product.UnitPrice(enums.ModeRetail),
		Quantity:  1,
		AddedAt:   now,
	}
}

// NewWholesaleItem returns a batch of product at its wholesale price. Zero
// entries are dropped from sizes.
func NewWholesaleItem(product catalog.Product, sizes catalog.SizeQuantities, now time.Time) (LineItem, error) {
	committed := sizes.NonZero()
	pairs, err := pricing.TotalPairs(committed)
	if err != nil {
		return LineItem{}, err
	}
	return LineItem{
		Product:   product.Clone(),
		Mode:      enums.ModeWholesale,
		UnitPrice: product.UnitPrice(enums.ModeWholesale),
		Quantity:  pairs,
		Sizes:     committed,
		AddedAt:   now,
	}, nil
}

// Clone returns a copy sharing no maps or slices with i.
func (i LineItem) Clone() LineItem {
	out := i
	out.Product = i.Product.Clone()
	out.Sizes = i.Sizes.Clone()
	return out
}

// Subtotal is unit price times quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return pricing.LineTotal(i.UnitPrice, i.Quantity)
}

func (i LineItem) pricingLine() pricing.Line {
	return pricing.Line{UnitPrice: i.UnitPrice, Quantity: i.Quantity, Mode: i.Mode}
}

// OrderLine converts the item for an order submission.
func (i LineItem) OrderLine() types.OrderLine {
	return types.OrderLine{
		ProductID: i.Product.ID,
		Name:      i.Product.Name,
		Category:  i.Product.Category,
		Mode:      i.Mode,
		UnitPrice: i.UnitPrice,
		Quantity:  i.Quantity,
		Sizes:     i.Sizes.Clone(),
	}
}

func (i LineItem) validate() error {
	if !i.Mode.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid mode %q", i.Mode)
	}
	if i.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if i.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	if i.Mode.IsWholesale() {
		pairs, err := pricing.TotalPairs(i.Sizes)
		if err != nil {
			return err
		}
		if pairs != i.Quantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "wholesale quantity must equal the size breakdown")
		}
	}
	return nil
}
