package cart

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testProduct(retail, wholesale string) catalog.Product {
	return catalog.Product{
		ID:             uuid.New(),
		Name:           "Trail Runner",
		Category:       "sports",
		RetailPrice:    decimal.RequireFromString(retail),
		WholesalePrice: decimal.RequireFromString(wholesale),
		MOQ:            24,
		Sizes:          catalog.SizeList{6, 7, 8},
		Images:         []string{"https://cdn.example.com/a.jpg"},
	}
}

func wholesaleItem(t *testing.T, p catalog.Product, sizes catalog.SizeQuantities) LineItem {
	t.Helper()
	item, err := NewWholesaleItem(p, sizes, now)
	require.NoError(t, err)
	return item
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	agg := NewAggregator(pricing.Default)
	a := testProduct("1000", "450")
	b := testProduct("2000", "900")
	b.Name = "Loafer"

	require.NoError(t, agg.Add(NewRetailItem(a, now)))
	require.NoError(t, agg.Add(wholesaleItem(t, b, catalog.SizeQuantities{"6": 10, "8": 14, "7": 0})))

	items := agg.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Trail Runner", items[0].Product.Name)
	assert.Equal(t, "Loafer", items[1].Product.Name)
	assert.Equal(t, catalog.SizeQuantities{"6": 10, "8": 14}, items[1].Sizes)
	assert.Equal(t, 24, items[1].Quantity)
	assert.Equal(t, 25, agg.TotalPairs())
}

func TestUnitPriceIsSnapshotAtAdd(t *testing.T) {
	agg := NewAggregator(pricing.Default)
	p := testProduct("1000", "450")
	require.NoError(t, agg.Add(NewRetailItem(p, now)))

	p.RetailPrice = decimal.RequireFromString("5000")
	p.Sizes[0] = 99

	item := agg.Items()[0]
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, 6.0, item.Product.Sizes[0])
}

func TestScenarioAWholesaleTotals(t *testing.T) {
	agg := NewAggregator(pricing.Default)
	p := testProduct("999", "450.50")
	require.NoError(t, agg.Add(wholesaleItem(t, p, catalog.SizeQuantities{"6": 10, "8": 14})))

	b := agg.Aggregate(enums.ModeWholesale, pricing.TaxPolicyCartMode)
	assert.True(t, b.Subtotal.Equal(decimal.RequireFromString("450.50").Mul(decimal.NewFromInt(24))))
	assert.True(t, b.Total.Equal(b.Subtotal.Mul(decimal.RequireFromString("1.12"))))
	assert.Equal(t, int64(12109), b.Rounded().Total)
}

func TestRemoveThenAggregateMatchesNeverAdded(t *testing.T) {
	base := NewAggregator(pricing.Default)
	withExtra := NewAggregator(pricing.Default)
	a := NewRetailItem(testProduct("1000", "450"), now)
	extra := wholesaleItem(t, testProduct("333.33", "123.45"), catalog.SizeQuantities{"7": 30})
	c := NewRetailItem(testProduct("77.7", "50"), now)

	require.NoError(t, base.Add(a))
	require.NoError(t, base.Add(c))

	require.NoError(t, withExtra.Add(a))
	require.NoError(t, withExtra.Add(extra))
	require.NoError(t, withExtra.Add(c))
	removed, err := withExtra.RemoveAt(1)
	require.NoError(t, err)
	assert.Equal(t, 30, removed.Quantity)

	for _, mode := range []enums.Mode{enums.ModeRetail, enums.ModeWholesale} {
		for _, policy := range []pricing.TaxPolicy{pricing.TaxPolicyCartMode, pricing.TaxPolicyLineMode} {
			want := base.Aggregate(mode, policy)
			got := withExtra.Aggregate(mode, policy)
			assert.True(t, want.Total.Equal(got.Total), "mode=%s policy=%s", mode, policy)
			assert.True(t, want.Tax.Equal(got.Tax), "mode=%s policy=%s", mode, policy)
		}
	}
	assert.Equal(t, base.Items(), withExtra.Items())
}

func TestItemsDoesNotAliasCart(t *testing.T) {
	agg := NewAggregator(pricing.Default)
	p := testProduct("10", "5")
	require.NoError(t, agg.Add(wholesaleItem(t, p, catalog.SizeQuantities{"6": 10, "8": 14})))

	got := agg.Items()
	got[0].Sizes["6"] = 1
	got[0].Product.Sizes[0] = 99
	got[0].Product.Images[0] = "changed"

	lines := agg.OrderLines()
	require.Len(t, lines, 1)
	assert.Equal(t, catalog.SizeQuantities{"6": 10, "8": 14}, lines[0].Sizes)
	assert.Equal(t, 24, lines[0].Quantity)

	again := agg.Items()[0]
	assert.Equal(t, 6.0, again.Product.Sizes[0])
	assert.Equal(t, "https://cdn.example.com/a.jpg", again.Product.Images[0])
}

func TestNewWholesaleItemRejectsOversizedBatch(t *testing.T) {
	p := testProduct("10", "5")
	_, err := NewWholesaleItem(p, catalog.SizeQuantities{"6": math.MaxInt, "7": math.MaxInt, "8": 26}, now)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAddRejectsWrappedQuantity(t *testing.T) {
	agg := NewAggregator(pricing.Default)
	item := NewRetailItem(testProduct("10", "5"), now)
	item.Mode = enums.ModeWholesale
	item.Sizes = catalog.SizeQuantities{"6": math.MaxInt, "7": math.MaxInt, "8": 26}
	item.Quantity = 24

	err := agg.Add(item)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.True(t, agg.IsEmpty())
}

func TestRemoveAtOutOfRange(t *testing.T) {
	agg := NewAggregator(pricing.Default)
	require.NoError(t, agg.Add(NewRetailItem(testProduct("10", "5"), now)))

	for _, idx := range []int{-1, 1, 5} {
		_, err := agg.RemoveAt(idx)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
	assert.Equal(t, 1, agg.Len())
}

func TestAddRejectsInvalidItems(t *testing.T) {
	agg := NewAggregator(pricing.Default)
	p := testProduct("10", "5")

	empty := wholesaleItem(t, p, catalog.SizeQuantities{"6": 0})
	assert.Error(t, agg.Add(empty))

	mismatched := wholesaleItem(t, p, catalog.SizeQuantities{"6": 3})
	mismatched.Quantity = 4
	assert.Error(t, agg.Add(mismatched))

	badMode := NewRetailItem(p, now)
	badMode.Mode = "bulk"
	assert.Error(t, agg.Add(badMode))

	assert.True(t, agg.IsEmpty())
}

func TestClearAndOrderLines(t *testing.T) {
	agg := NewAggregator(pricing.Default)
	p := testProduct("10", "5")
	require.NoError(t, agg.Add(wholesaleItem(t, p, catalog.SizeQuantities{"6": 24})))

	lines := agg.OrderLines()
	require.Len(t, lines, 1)
	assert.Equal(t, p.ID, lines[0].ProductID)
	assert.Equal(t, enums.ModeWholesale, lines[0].Mode)
	assert.Equal(t, 24, lines[0].Quantity)
	assert.Equal(t, catalog.SizeQuantities{"6": 24}, lines[0].Sizes)

	agg.Clear()
	assert.True(t, agg.IsEmpty())
	assert.True(t, agg.Aggregate(enums.ModeWholesale, pricing.TaxPolicyCartMode).Total.IsZero())
}
