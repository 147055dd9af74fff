// Package storefront is the shopper-facing application controller. An App
// owns the session, the active pricing mode, the size matrix and the cart,
// and reaches the backend only through a Backend. An App is not safe for
// concurrent use.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shoefinderz-backend/internal/cart"
	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/internal/sizematrix"
	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
	"github.com/angelmondragon/shoefinderz-backend/pkg/pagination"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

// Backend is the subset of the store API the storefront calls.
// *storeclient.Client satisfies it.
type Backend interface {
	ListProducts(ctx context.Context, category string) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, token string, input catalog.ProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, token string, id uuid.UUID, input catalog.ProductInput) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, token string, id uuid.UUID) error
	PlaceOrder(ctx context.Context, token, idempotencyKey string, req types.OrderRequest) (*types.Order, error)
	ListOrders(ctx context.Context, token string, params pagination.Params) (*types.OrderPage, error)
	GetOrder(ctx context.Context, token string, id uuid.UUID) (*types.OrderDetail, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error)
	Signup(ctx context.Context, req types.SignupRequest) (*types.AuthResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*types.TokenPair, error)
	Logout(ctx context.Context, token string) error
}

// Params configures an App.
type Params struct {
	Backend    Backend
	Sessions   SessionStore
	Logger     *logger.Logger
	Calculator *pricing.Calculator
	Policy     pricing.TaxPolicy
	Now        func() time.Time
	NewKey     func() string
}

// App is the storefront controller.
type App struct {
	backend  Backend
	sessions SessionStore
	logg     *logger.Logger
	calc     pricing.Calculator
	policy   pricing.TaxPolicy
	now      func() time.Time
	newKey   func() string

	session   *Session
	mode      enums.Mode
	view      View
	matrix    *sizematrix.Collector
	cart      *cart.Aggregator
	products  []catalog.Product
	lastOrder *types.Order
}

// New returns an anonymous App in retail mode on the catalog view.
func New(params Params) (*App, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	calc := pricing.Default
	if params.Calculator != nil {
		calc = *params.Calculator
	}
	policy := params.Policy
	if policy == "" {
		policy = pricing.TaxPolicyCartMode
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("invalid tax policy %q", policy)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	newKey := params.NewKey
	if newKey == nil {
		newKey = uuid.NewString
	}
	return &App{
		backend:  params.Backend,
		sessions: params.Sessions,
		logg:     logg,
		calc:     calc,
		policy:   policy,
		now:      now,
		newKey:   newKey,
		mode:     enums.ModeRetail,
		view:     ViewCatalog,
		matrix:   sizematrix.NewCollector(calc, now),
		cart:     cart.NewAggregator(calc),
	}, nil
}

func (a *App) View() View {
	return a.view
}

// Navigate moves to view. Admin and cart views are gated on the session.
func (a *App) Navigate(view View) error {
	switch view {
	case ViewAdmin:
		if err := a.requireAdmin(); err != nil {
			return err
		}
	case ViewCart:
		if err := a.requireSession("sign in to view your cart"); err != nil {
			return err
		}
	}
	a.view = view
	return nil
}

// State derives the auth state from the in-memory session.
func (a *App) State() AuthState {
	switch {
	case a.session == nil:
		return StateAnonymous
	case a.session.IsAdmin():
		return StateAdmin
	default:
		return StateBuyer
	}
}

// User returns the signed-in user.
func (a *App) User() (types.SessionUser, bool) {
	if a.session == nil {
		return types.SessionUser{}, false
	}
	return a.session.User, true
}

// Restore loads a persisted session. A missing or unusable record leaves
// the App anonymous.
func (a *App) Restore(ctx context.Context) error {
	stored, err := a.sessions.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		a.session = nil
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
	}
	if !stored.valid() {
		a.logg.Warn(ctx, "discarding unusable stored session")
		a.session = nil
		return a.sessions.Delete(ctx)
	}
	a.session = stored
	return nil
}

// Login signs in and persists the session record.
func (a *App) Login(ctx context.Context, identifier, password string) error {
	resp, err := a.backend.Login(ctx, types.LoginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return err
	}
	return a.startSession(ctx, resp)
}

// Signup creates a buyer account and signs in.
func (a *App) Signup(ctx context.Context, name, identifier, password string) error {
	resp, err := a.backend.Signup(ctx, types.SignupRequest{Name: name, Identifier: identifier, Password: password})
	if err != nil {
		return err
	}
	return a.startSession(ctx, resp)
}

func (a *App) startSession(ctx context.Context, resp *types.AuthResponse) error {
	if resp == nil || !resp.Success || resp.AccessToken == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, "sign in was not acknowledged")
	}
	session := Session{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		SavedAt:      a.now().UTC(),
	}
	if !session.valid() {
		return pkgerrors.Newf(pkgerrors.CodeDependency, "sign in returned unknown role %q", resp.User.Role)
	}
	if err := a.sessions.Save(ctx, session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist session")
	}
	a.session = &session
	if a.view == ViewLogin {
		a.view = ViewCatalog
	}
	return nil
}

// RefreshSession rotates the token pair and persists it.
func (a *App) RefreshSession(ctx context.Context) error {
	if err := a.requireSession("sign in first"); err != nil {
		return err
	}
	pair, err := a.backend.Refresh(ctx, a.session.AccessToken, a.session.RefreshToken)
	if err != nil {
		return err
	}
	updated := *a.session
	updated.AccessToken = pair.AccessToken
	updated.RefreshToken = pair.RefreshToken
	updated.SavedAt = a.now().UTC()
	if err := a.sessions.Save(ctx, updated); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist session")
	}
	a.session = &updated
	return nil
}

// Logout revokes the server session and tears down local state: the record
// is deleted, mode resets to retail, and the cart and matrix are cleared.
// Local teardown happens even when revocation fails.
func (a *App) Logout(ctx context.Context) error {
	var errs error
	if a.session != nil {
		if err := a.backend.Logout(ctx, a.session.AccessToken); err != nil {
			a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "server logout failed")
			errs = multierr.Append(errs, err)
		}
	}
	if err := a.sessions.Delete(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	a.session = nil
	a.mode = enums.ModeRetail
	a.matrix.Cancel()
	a.cart.Clear()
	a.lastOrder = nil
	a.view = ViewCatalog
	return errs
}

func (a *App) Mode() enums.Mode {
	return a.mode
}

// SetMode switches the pricing mode. Leaving wholesale discards an open
// size matrix; cart lines keep their own prices.
func (a *App) SetMode(mode enums.Mode) error {
	if !mode.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid mode %q", mode)
	}
	if !mode.IsWholesale() {
		a.matrix.Cancel()
	}
	a.mode = mode
	return nil
}

// Products fetches the catalog. On failure the previous listing is kept and
// the error returned.
func (a *App) Products(ctx context.Context, category string) ([]catalog.Product, error) {
	products, err := a.backend.ListProducts(ctx, category)
	if err != nil {
		return nil, err
	}
	a.products = products
	return products, nil
}

// Product returns a product from the last listing.
func (a *App) Product(id uuid.UUID) (catalog.Product, bool) {
	for _, p := range a.products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

// AddToCart adds one retail pair in retail mode and opens the size matrix
// in wholesale mode. Anonymous shoppers are redirected to login.
func (a *App) AddToCart(product catalog.Product) error {
	if err := a.requireSession("sign in to add items to your cart"); err != nil {
		return err
	}
	if a.mode.IsWholesale() {
		return a.matrix.Open(product)
	}
	return a.cart.Add(cart.NewRetailItem(product, a.now()))
}

// SetSize records a keystroke in the open size matrix.
func (a *App) SetSize(size, raw string) error {
	return a.matrix.Set(size, raw)
}

// SetSizes records several matrix cells.
func (a *App) SetSizes(raw map[string]string) error {
	return a.matrix.SetAll(raw)
}

// MatrixPreview returns live totals for the open matrix.
func (a *App) MatrixPreview() (sizematrix.Preview, error) {
	return a.matrix.Preview()
}

// CommitMatrix moves the open batch into the cart. Below the MOQ the matrix
// stays open and the cart is unchanged.
func (a *App) CommitMatrix() error {
	if err := a.requireSession("sign in to add items to your cart"); err != nil {
		return err
	}
	item, err := a.matrix.Commit()
	if err != nil {
		return err
	}
	return a.cart.Add(item)
}

func (a *App) CancelMatrix() {
	a.matrix.Cancel()
}

func (a *App) MatrixOpen() bool {
	return a.matrix.IsOpen()
}

// Cart returns copies of the cart lines in insertion order.
func (a *App) Cart() []cart.LineItem {
	return a.cart.Items()
}

// RemoveAt drops the cart line at index.
func (a *App) RemoveAt(index int) error {
	_, err := a.cart.RemoveAt(index)
	return err
}

// Totals aggregates the cart under the active mode.
func (a *App) Totals() pricing.Breakdown {
	return a.cart.Aggregate(a.mode, a.policy)
}

// DisplayTotals is Totals rounded for presentation.
func (a *App) DisplayTotals() pricing.DisplayBreakdown {
	return a.Totals().Rounded()
}

// LastOrder is the order acknowledged by the most recent PlaceOrder.
func (a *App) LastOrder() (*types.Order, bool) {
	return a.lastOrder, a.lastOrder != nil
}

// PlaceOrder submits the cart with the shipping details. The cart is cleared
// and the view moves to confirmation only when the backend acknowledges the
// order; on failure the cart is left intact. Every call uses a new
// idempotency key.
func (a *App) PlaceOrder(ctx context.Context, shipping types.ShippingDetails) (*types.Order, error) {
	if err := a.requireSession("sign in to place an order"); err != nil {
		return nil, err
	}
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	if a.cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
	}

	req := types.OrderRequest{
		Customer: shipping.Normalize(),
		Items:    a.cart.OrderLines(),
		Total:    a.DisplayTotals().Total,
		Mode:     a.mode,
	}
	key := a.newKey()
	ctx = a.logg.WithFields(ctx, map[string]any{"idempotency_key": key, "lines": len(req.Items), "total": req.Total})

	order, err := a.backend.PlaceOrder(ctx, a.session.AccessToken, key, req)
	if err != nil {
		a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "order submission failed")
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order was not acknowledged")
	}

	a.cart.Clear()
	a.lastOrder = order
	a.view = ViewConfirmation
	a.logg.Info(a.logg.WithField(ctx, "order_id", order.ID.String()), "order placed")
	return order, nil
}

// CreateProduct submits a new product from the admin form.
func (a *App) CreateProduct(ctx context.Context, form ProductForm) (*catalog.Product, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	input, err := form.Input()
	if err != nil {
		return nil, err
	}
	return a.backend.CreateProduct(ctx, a.session.AccessToken, input)
}

// UpdateProduct saves the edit form for id.
func (a *App) UpdateProduct(ctx context.Context, id uuid.UUID, form ProductForm) (*catalog.Product, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	input, err := form.Input()
	if err != nil {
		return nil, err
	}
	return a.backend.UpdateProduct(ctx, a.session.AccessToken, id, input)
}

func (a *App) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.backend.DeleteProduct(ctx, a.session.AccessToken, id)
}

// Orders lists received orders, newest first.
func (a *App) Orders(ctx context.Context, params pagination.Params) (*types.OrderPage, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	return a.backend.ListOrders(ctx, a.session.AccessToken, params)
}

// OrderDetail returns one order with its display-only breakdown.
func (a *App) OrderDetail(ctx context.Context, id uuid.UUID) (*types.OrderDetail, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	return a.backend.GetOrder(ctx, a.session.AccessToken, id)
}

func (a *App) requireSession(message string) error {
	if a.session != nil {
		return nil
	}
	a.view = ViewLogin
	return pkgerrors.New(pkgerrors.CodeUnauthorized, message).
		WithDetails(map[string]any{"redirect": string(ViewLogin)})
}

func (a *App) requireAdmin() error {
	if err := a.requireSession("sign in as an administrator"); err != nil {
		return err
	}
	if !a.session.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "administrator access required")
	}
	return nil
}
