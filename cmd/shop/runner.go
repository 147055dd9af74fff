package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/internal/storefront"
	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

// shopper is the part of storefront.App a sheet run drives.
type shopper interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, identifier, password string) error
	Signup(ctx context.Context, name, identifier, password string) error
	State() storefront.AuthState
	SetMode(mode enums.Mode) error
	Products(ctx context.Context, category string) ([]catalog.Product, error)
	AddToCart(product catalog.Product) error
	SetSizes(raw map[string]string) error
	CommitMatrix() error
	DisplayTotals() pricing.DisplayBreakdown
	PlaceOrder(ctx context.Context, shipping types.ShippingDetails) (*types.Order, error)
}

type runner struct {
	app    shopper
	out    io.Writer
	dryRun bool
}

// Run signs in, fills the cart from sheet and submits the order. With
// dryRun the totals are printed and nothing is submitted.
func (r *runner) Run(ctx context.Context, sheet *Sheet) (*types.Order, error) {
	if err := r.signIn(ctx, sheet); err != nil {
		return nil, err
	}

	listing, err := r.app.Products(ctx, sheet.Category)
	if err != nil {
		return nil, err
	}

	if len(sheet.Retail) > 0 {
		if err := r.app.SetMode(enums.ModeRetail); err != nil {
			return nil, err
		}
		for _, line := range sheet.Retail {
			product, err := findProduct(listing, line.Product)
			if err != nil {
				return nil, err
			}
			for i := 0; i < line.Quantity; i++ {
				if err := r.app.AddToCart(product); err != nil {
					return nil, err
				}
			}
			fmt.Fprintf(r.out, "added %d x %s (retail)\n", line.Quantity, product.Name)
		}
	}

	if len(sheet.Matrices) > 0 {
		if err := r.app.SetMode(enums.ModeWholesale); err != nil {
			return nil, err
		}
		for _, line := range sheet.Matrices {
			product, err := findProduct(listing, line.Product)
			if err != nil {
				return nil, err
			}
			if err := r.app.AddToCart(product); err != nil {
				return nil, err
			}
			if err := r.app.SetSizes(sizeKeystrokes(line.Sizes)); err != nil {
				return nil, err
			}
			if err := r.app.CommitMatrix(); err != nil {
				return nil, err
			}
			pairs, _ := pricing.TotalPairs(line.Sizes)
			fmt.Fprintf(r.out, "added %d pairs of %s (wholesale)\n", pairs, product.Name)
		}
	}

	if err := r.app.SetMode(sheet.Mode); err != nil {
		return nil, err
	}
	totals := r.app.DisplayTotals()
	fmt.Fprintf(r.out, "subtotal %d  tax %d  total %d (%s)\n", totals.Subtotal, totals.Tax, totals.Total, sheet.Mode)
	if r.dryRun {
		return nil, nil
	}

	order, err := r.app.PlaceOrder(ctx, sheet.Shipping)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(r.out, "order %s placed, total %d, status %s\n", order.ID, order.Total, order.Status)
	return order, nil
}

func (r *runner) signIn(ctx context.Context, sheet *Sheet) error {
	switch {
	case sheet.Login != nil:
		return r.app.Login(ctx, sheet.Login.Identifier, sheet.Login.Password)
	case sheet.Signup != nil:
		return r.app.Signup(ctx, sheet.Signup.Name, sheet.Signup.Identifier, sheet.Signup.Password)
	}
	if err := r.app.Restore(ctx); err != nil {
		return err
	}
	if r.app.State() == storefront.StateAnonymous {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no stored session; add login credentials to the sheet")
	}
	return nil
}

// findProduct resolves ref as a product id or, failing that, a case
// insensitive name.
func findProduct(listing []catalog.Product, ref string) (catalog.Product, error) {
	if id, err := uuid.Parse(ref); err == nil {
		for _, p := range listing {
			if p.ID == id {
				return p, nil
			}
		}
	}
	var matches []catalog.Product
	for _, p := range listing {
		if strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return catalog.Product{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %q not found", ref)
	default:
		return catalog.Product{}, pkgerrors.Newf(pkgerrors.CodeConflict, "product name %q is ambiguous; use its id", ref)
	}
}

func sizeKeystrokes(sizes map[string]int) map[string]string {
	raw := make(map[string]string, len(sizes))
	for size, qty := range sizes {
		raw[size] = strconv.Itoa(qty)
	}
	return raw
}
