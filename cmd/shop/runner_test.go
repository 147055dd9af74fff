package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/internal/storefront"
	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

type fakeShopper struct {
	state    storefront.AuthState
	listing  []catalog.Product
	calls    []string
	modes    []enums.Mode
	sizes    []map[string]string
	added    []string
	placed   *types.ShippingDetails
	loginErr error
}

func (f *fakeShopper) Restore(context.Context) error {
	f.calls = append(f.calls, "restore")
	return nil
}

func (f *fakeShopper) Login(_ context.Context, identifier, _ string) error {
	f.calls = append(f.calls, "login:"+identifier)
	if f.loginErr != nil {
		return f.loginErr
	}
	f.state = storefront.StateBuyer
	return nil
}

func (f *fakeShopper) Signup(_ context.Context, name, _, _ string) error {
	f.calls = append(f.calls, "signup:"+name)
	f.state = storefront.StateBuyer
	return nil
}

func (f *fakeShopper) State() storefront.AuthState {
	return f.state
}

func (f *fakeShopper) SetMode(mode enums.Mode) error {
	f.modes = append(f.modes, mode)
	return nil
}

func (f *fakeShopper) Products(context.Context, string) ([]catalog.Product, error) {
	return f.listing, nil
}

func (f *fakeShopper) AddToCart(product catalog.Product) error {
	f.added = append(f.added, product.Name)
	return nil
}

func (f *fakeShopper) SetSizes(raw map[string]string) error {
	f.sizes = append(f.sizes, raw)
	return nil
}

func (f *fakeShopper) CommitMatrix() error {
	f.calls = append(f.calls, "commit")
	return nil
}

func (f *fakeShopper) DisplayTotals() pricing.DisplayBreakdown {
	return pricing.DisplayBreakdown{Subtotal: 10812, Tax: 1297, Total: 12109}
}

func (f *fakeShopper) PlaceOrder(_ context.Context, shipping types.ShippingDetails) (*types.Order, error) {
	f.placed = &shipping
	return &types.Order{ID: uuid.New(), Total: 12109, Status: enums.OrderStatusPending}, nil
}

func catalogListing() []catalog.Product {
	return []catalog.Product{
		{ID: uuid.New(), Name: "Trail Runner", WholesalePrice: decimal.RequireFromString("450.50"), MOQ: 24, Sizes: catalog.SizeList{6, 7, 8}},
		{ID: uuid.New(), Name: "Loafer", RetailPrice: decimal.RequireFromString("1499"), Sizes: catalog.SizeList{8, 9}},
	}
}

func TestRunnerPlacesSheet(t *testing.T) {
	sheet, err := ParseSheet(bytes.NewBufferString(`
login: {identifier: "9876543210", password: buyer-password}
mode: wholesale
retail: [{product: loafer, quantity: 2}]
matrices:
  - product: Trail Runner
    sizes: {6: 10, 8: 14}
shipping: {name: Asha, contact: "9876543210", address: Pune}
`))
	require.NoError(t, err)

	shop := &fakeShopper{listing: catalogListing()}
	var out bytes.Buffer
	r := &runner{app: shop, out: &out}
	order, err := r.Run(context.Background(), sheet)
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, []string{"login:9876543210", "commit"}, shop.calls)
	assert.Equal(t, []enums.Mode{enums.ModeRetail, enums.ModeWholesale, enums.ModeWholesale}, shop.modes)
	assert.Equal(t, []string{"Loafer", "Loafer", "Trail Runner"}, shop.added)
	assert.Equal(t, []map[string]string{{"6": "10", "8": "14"}}, shop.sizes)
	require.NotNil(t, shop.placed)
	assert.Equal(t, "Asha", shop.placed.Name)
	assert.Contains(t, out.String(), "total 12109")
	assert.Contains(t, out.String(), "added 24 pairs of Trail Runner")
}

func TestRunnerDryRunSkipsSubmission(t *testing.T) {
	sheet := &Sheet{
		Signup:   &Credentials{Name: "Ravi", Identifier: "9876500000", Password: "buyer-password"},
		Mode:     enums.ModeRetail,
		Retail:   []RetailLine{{Product: "Loafer", Quantity: 1}},
		Shipping: types.ShippingDetails{Name: "Ravi", Contact: "1", Address: "Lane"},
	}
	shop := &fakeShopper{listing: catalogListing()}
	var out bytes.Buffer
	order, err := (&runner{app: shop, out: &out, dryRun: true}).Run(context.Background(), sheet)
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Nil(t, shop.placed)
	assert.Equal(t, []string{"signup:Ravi"}, shop.calls)
}

func TestRunnerRequiresSession(t *testing.T) {
	sheet := &Sheet{Mode: enums.ModeRetail, Retail: []RetailLine{{Product: "Loafer", Quantity: 1}}}
	shop := &fakeShopper{state: storefront.StateAnonymous}
	_, err := (&runner{app: shop, out: &bytes.Buffer{}}).Run(context.Background(), sheet)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Equal(t, []string{"restore"}, shop.calls)
}

func TestRunnerStopsOnLoginFailure(t *testing.T) {
	sheet := &Sheet{Login: &Credentials{Identifier: "x", Password: "y"}, Mode: enums.ModeRetail}
	shop := &fakeShopper{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	_, err := (&runner{app: shop, out: &bytes.Buffer{}}).Run(context.Background(), sheet)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Empty(t, shop.added)
}

func TestFindProduct(t *testing.T) {
	listing := catalogListing()
	listing = append(listing, catalog.Product{ID: uuid.New(), Name: "loafer"})

	byID, err := findProduct(listing, listing[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Trail Runner", byID.Name)

	byName, err := findProduct(listing, "trail runner")
	require.NoError(t, err)
	assert.Equal(t, listing[0].ID, byName.ID)

	_, err = findProduct(listing, "Loafer")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = findProduct(listing, "Sandal")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
