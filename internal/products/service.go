package product

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/db"
	"github.com/angelmondragon/shoefinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

// Service exposes catalog reads and admin product management.
type Service interface {
	ListProducts(ctx context.Context, q ListQuery) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	CreateProduct(ctx context.Context, input catalog.ProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input catalog.ProductInput) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, q ListQuery) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo productRepository
	now  func() time.Time
}

// NewService constructs a product service instance.
func NewService(repo productRepository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) ListProducts(ctx context.Context, q ListQuery) ([]catalog.Product, error) {
	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	p := FromModel(m)
	return &p, nil
}

func (s *service) CreateProduct(ctx context.Context, input catalog.ProductInput) (*catalog.Product, error) {
	input = input.Normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, newModel(input, s.now()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	p := FromModel(created)
	return &p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input catalog.ProductInput) (*catalog.Product, error) {
	input = input.Normalize()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(existing, input, s.now())
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	p := FromModel(updated)
	return &p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return m, nil
}

// validateInput collects every form problem so the console can show them
// together.
func validateInput(in catalog.ProductInput) error {
	var errs error
	if in.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("name is required"))
	}
	if in.Category == "" {
		errs = multierr.Append(errs, fmt.Errorf("category is required"))
	}
	if in.RetailPrice.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("retail price must not be negative"))
	}
	if in.WholesalePrice.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("wholesale price must not be negative"))
	}
	if in.MOQ < 0 {
		errs = multierr.Append(errs, fmt.Errorf("moq must not be negative"))
	}
	if in.Stock < 0 {
		errs = multierr.Append(errs, fmt.Errorf("stock must not be negative"))
	}
	if err := in.Sizes.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := catalog.ValidateImages(in.Images); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs == nil {
		return nil
	}

	list := multierr.Errors(errs)
	messages := make([]string, len(list))
	for i, err := range list {
		messages[i] = err.Error()
	}
	return pkgerrors.New(pkgerrors.CodeValidation, list[0].Error()).
		WithDetails(map[string]any{"errors": messages})
}
