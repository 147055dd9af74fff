// Package catalog defines the product schema shared by the API and the
// storefront, along with the size and image parsing applied at the admin
// form boundary.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
)

type Product struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	MOQ            int             `json:"moq"`
	Sizes          SizeList        `json:"sizes"`
	Stock          int             `json:"stock"`
	Images         []string        `json:"images"`
	Tag            *string         `json:"tag,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// UnitPrice returns the per pair price under mode.
func (p Product) UnitPrice(mode enums.Mode) decimal.Decimal {
	return pricing.UnitPrice(p.RetailPrice, p.WholesalePrice, mode)
}

// Clone returns a deep copy so cart snapshots never alias catalog slices.
func (p Product) Clone() Product {
	out := p
	out.Sizes = append(SizeList(nil), p.Sizes...)
	out.Images = append([]string(nil), p.Images...)
	if p.Tag != nil {
		tag := *p.Tag
		out.Tag = &tag
	}
	return out
}

// ProductInput is the create/update payload sent by the admin console.
type ProductInput struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Category       string          `json:"category" validate:"required,max=100"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	MOQ            int             `json:"moq" validate:"gte=0"`
	Sizes          SizeList        `json:"sizes" validate:"required,min=1"`
	Stock          int             `json:"stock" validate:"gte=0"`
	Images         []string        `json:"images" validate:"required,min=1,dive,required"`
	Tag            *string         `json:"tag,omitempty" validate:"omitempty,max=50"`
}

// Normalize trims text fields and drops an empty tag.
func (in ProductInput) Normalize() ProductInput {
	out := in
	out.Name = strings.TrimSpace(in.Name)
	out.Category = strings.TrimSpace(in.Category)
	out.Images = make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if trimmed := strings.TrimSpace(img); trimmed != "" {
			out.Images = append(out.Images, trimmed)
		}
	}
	if in.Tag != nil {
		tag := strings.TrimSpace(*in.Tag)
		if tag == "" {
			out.Tag = nil
		} else {
			out.Tag = &tag
		}
	}
	return out
}
