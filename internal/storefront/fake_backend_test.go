package storefront

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/pagination"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

type fakeBackend struct {
	products  []catalog.Product
	roles     map[string]enums.Role
	orderErr  error
	logoutErr error

	placed    []types.OrderRequest
	keys      []string
	tokens    []string
	created   []catalog.ProductInput
	loggedOut []string
}

func newFakeBackend(products ...catalog.Product) *fakeBackend {
	return &fakeBackend{
		products: products,
		roles:    map[string]enums.Role{"9876543210": enums.RoleBuyer, "9000000001": enums.RoleAdmin},
	}
}

func (f *fakeBackend) authResponse(identifier string) (*types.AuthResponse, error) {
	role, ok := f.roles[identifier]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return &types.AuthResponse{
		Success:      true,
		User:         types.SessionUser{ID: uuid.New(), Name: "Shopper", Identifier: identifier, Role: role},
		AccessToken:  "access-" + identifier,
		RefreshToken: "refresh-" + identifier,
	}, nil
}

func (f *fakeBackend) ListProducts(context.Context, string) ([]catalog.Product, error) {
	return f.products, nil
}

func (f *fakeBackend) CreateProduct(_ context.Context, token string, input catalog.ProductInput) (*catalog.Product, error) {
	f.tokens = append(f.tokens, token)
	f.created = append(f.created, input)
	return &catalog.Product{ID: uuid.New(), Name: input.Name, Sizes: input.Sizes, Images: input.Images}, nil
}

func (f *fakeBackend) UpdateProduct(_ context.Context, token string, id uuid.UUID, input catalog.ProductInput) (*catalog.Product, error) {
	f.tokens = append(f.tokens, token)
	return &catalog.Product{ID: id, Name: input.Name}, nil
}

func (f *fakeBackend) DeleteProduct(_ context.Context, token string, _ uuid.UUID) error {
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeBackend) PlaceOrder(_ context.Context, token, key string, req types.OrderRequest) (*types.Order, error) {
	f.tokens = append(f.tokens, token)
	f.keys = append(f.keys, key)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	f.placed = append(f.placed, req)
	return &types.Order{ID: uuid.New(), Customer: req.Customer, Items: req.Items, Mode: req.Mode, Total: req.Total, Status: enums.OrderStatusPending}, nil
}

func (f *fakeBackend) ListOrders(_ context.Context, token string, _ pagination.Params) (*types.OrderPage, error) {
	f.tokens = append(f.tokens, token)
	return &types.OrderPage{Orders: []types.Order{}}, nil
}

func (f *fakeBackend) GetOrder(_ context.Context, token string, id uuid.UUID) (*types.OrderDetail, error) {
	f.tokens = append(f.tokens, token)
	return &types.OrderDetail{Order: types.Order{ID: id}}, nil
}

func (f *fakeBackend) Login(_ context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	return f.authResponse(req.Identifier)
}

func (f *fakeBackend) Signup(_ context.Context, req types.SignupRequest) (*types.AuthResponse, error) {
	f.roles[req.Identifier] = enums.RoleBuyer
	return f.authResponse(req.Identifier)
}

func (f *fakeBackend) Refresh(_ context.Context, _, refresh string) (*types.TokenPair, error) {
	return &types.TokenPair{AccessToken: "rotated-access", RefreshToken: refresh + "-rotated"}, nil
}

func (f *fakeBackend) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return f.logoutErr
}
