package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/db"
	"github.com/angelmondragon/shoefinderz-backend/pkg/db/models"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
	"github.com/angelmondragon/shoefinderz-backend/pkg/metrics"
	"github.com/angelmondragon/shoefinderz-backend/pkg/pagination"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

// Service places orders and serves the admin order views.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, idempotencyKey string, req types.OrderRequest) (*types.Order, error)
	ListOrders(ctx context.Context, params pagination.Params) (*types.OrderPage, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*types.OrderDetail, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

// ServiceParams names the dependencies of the order service.
type ServiceParams struct {
	Repo       Repository
	Tx         txRunner
	Products   productLoader
	Calculator *pricing.Calculator
	Policy     pricing.TaxPolicy
	Metrics    *metrics.OrderMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
	calc     pricing.Calculator
	policy   pricing.TaxPolicy
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an order service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	policy := params.Policy
	if policy == "" {
		policy = pricing.TaxPolicyCartMode
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("invalid tax policy %q", policy)
	}
	calc := pricing.Default
	if params.Calculator != nil {
		calc = *params.Calculator
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		products: params.Products,
		calc:     calc,
		policy:   policy,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, idempotencyKey string, req types.OrderRequest) (*types.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order")
	}
	key := strings.TrimSpace(idempotencyKey)
	if key != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, userID, key)
		if err == nil {
			return FromModel(existing), nil
		}
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup idempotent order")
		}
	}

	customer := req.Customer.Normalize()
	if err := customer.Validate(); err != nil {
		s.metrics.IncRejected("shipping")
		return nil, err
	}
	if !req.Mode.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid mode %q", req.Mode)
	}
	if len(req.Items) == 0 {
		s.metrics.IncRejected("empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	breakdown, err := s.reconcile(ctx, req)
	if err != nil {
		return nil, err
	}
	rounded := pricing.Display(breakdown.Total)
	if rounded != req.Total {
		s.metrics.IncRejected("total_mismatch")
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation,
			"order total %d does not match the cart total %d", req.Total, rounded,
		).WithDetails(map[string]any{
			"submitted_total": req.Total,
			"expected_total":  rounded,
			"tax_policy":      s.policy,
		})
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		CustomerName:    customer.Name,
		CustomerContact: customer.Contact,
		CustomerAddress: customer.Address,
		Mode:            req.Mode,
		Status:          enums.OrderStatusPending,
		TaxPolicy:       s.policy.String(),
		Subtotal:        breakdown.Subtotal,
		Tax:             breakdown.Tax,
		Total:           rounded,
		CreatedAt:       now,
	}
	if key != "" {
		order.IdempotencyKey = &key
	}
	order.LineItems = lineItems(order.ID, req.Items, now)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		return repo.CreateOrderLineItems(ctx, order.LineItems)
	})
	if err != nil {
		if key != "" && db.IsUniqueViolation(err, "") {
			existing, findErr := s.repo.FindByIdempotencyKey(ctx, userID, key)
			if findErr == nil {
				return FromModel(existing), nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
	}

	s.metrics.IncPlaced(order.Mode)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"mode":     string(order.Mode),
		"total":    order.Total,
		"lines":    len(order.LineItems),
	})
	s.logg.Info(ctx, "order placed")
	return FromModel(order), nil
}

// reconcile checks each submitted line against the catalog and recomputes
// the totals. Unit prices are the snapshots taken when the lines were added.
func (s *service) reconcile(ctx context.Context, req types.OrderRequest) (pricing.Breakdown, error) {
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return pricing.Breakdown{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}

	lines := make([]pricing.Line, 0, len(req.Items))
	var minimums []pricing.MinimumInput
	for i, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok {
			s.metrics.IncRejected("unknown_product")
			return pricing.Breakdown{}, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is no longer available", lineName(item)).
				WithDetails(map[string]any{"line": i, "product_id": item.ProductID})
		}
		if err := validateLine(i, item, product); err != nil {
			s.metrics.IncRejected("invalid_line")
			return pricing.Breakdown{}, err
		}
		if item.Mode.IsWholesale() {
			minimums = append(minimums, pricing.MinimumInput{
				ProductID:   product.ID,
				ProductName: product.Name,
				MOQ:         product.MOQ,
				Pairs:       item.Quantity,
			})
		}
		if current := pricing.UnitPrice(product.RetailPrice, product.WholesalePrice, item.Mode); !current.Equal(item.UnitPrice) {
			warnCtx := s.logg.WithFields(ctx, map[string]any{
				"product_id":     product.ID.String(),
				"snapshot_price": item.UnitPrice.String(),
				"catalog_price":  current.String(),
			})
			s.logg.Warn(warnCtx, "order line price differs from catalog")
		}
		lines = append(lines, item.PricingLine())
	}

	if err := pricing.ValidateMinimums(minimums); err != nil {
		s.metrics.IncRejected("moq")
		return pricing.Breakdown{}, err
	}
	return s.calc.Aggregate(lines, req.Mode, s.policy), nil
}

func validateLine(index int, item types.OrderLine, product *models.Product) error {
	fail := func(format string, args ...any) error {
		return pkgerrors.Newf(pkgerrors.CodeValidation, format, args...).
			WithDetails(map[string]any{"line": index, "product_id": item.ProductID})
	}
	if !item.Mode.IsValid() {
		return fail("line %d has invalid mode %q", index+1, item.Mode)
	}
	if item.Quantity < 1 {
		return fail("line %d must have at least one pair", index+1)
	}
	if item.UnitPrice.IsNegative() {
		return fail("line %d has a negative unit price", index+1)
	}
	if !item.Mode.IsWholesale() {
		if len(item.Sizes.NonZero()) > 0 {
			return fail("retail line %d must not carry a size breakdown", index+1)
		}
		return nil
	}

	offered := catalog.SizeList(product.Sizes)
	for size, qty := range item.Sizes {
		if qty < 0 {
			return fail("line %d has a negative quantity for size %s", index+1, size)
		}
		if qty > pricing.MaxPairsPerSize {
			return fail("line %d asks for %d pairs of size %s; at most %d are allowed per size", index+1, qty, size, pricing.MaxPairsPerSize)
		}
		if !offered.Contains(size) {
			return fail("size %s is not offered for %s", size, product.Name)
		}
	}
	pairs, err := pricing.TotalPairs(item.Sizes)
	if err != nil {
		return fail("line %d pairs do not add up: %v", index+1, err)
	}
	if pairs != item.Quantity {
		return fail("line %d quantity %d does not match its %d pairs", index+1, item.Quantity, pairs)
	}
	return nil
}

func lineItems(orderID uuid.UUID, lines []types.OrderLine, now time.Time) []models.OrderLineItem {
	out := make([]models.OrderLineItem, 0, len(lines))
	for i, line := range lines {
		productID := line.ProductID
		item := models.OrderLineItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			Position:  i,
			ProductID: &productID,
			Name:      strings.TrimSpace(line.Name),
			Category:  strings.TrimSpace(line.Category),
			Mode:      line.Mode,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Sizes:     catalog.SizeQuantities{},
			CreatedAt: now,
		}
		if line.Mode.IsWholesale() {
			item.Sizes = line.Sizes.NonZero()
		}
		out = append(out, item)
	}
	return out
}

func lineName(item types.OrderLine) string {
	if name := strings.TrimSpace(item.Name); name != "" {
		return name
	}
	return "product " + item.ProductID.String()
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params) (*types.OrderPage, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListOrders(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	page := &types.OrderPage{Orders: make([]types.Order, 0, len(rows)), NextCursor: next}
	for i := range rows {
		page.Orders = append(page.Orders, *FromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*types.OrderDetail, error) {
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return &types.OrderDetail{
		Order:     *FromModel(order),
		Breakdown: s.calc.InverseTax(decimal.NewFromInt(order.Total), order.Mode).Rounded(),
	}, nil
}
