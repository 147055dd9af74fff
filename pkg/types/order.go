package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shoefinderz-backend/internal/pricing"
	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
)

// OrderLine is one cart line as submitted with an order. UnitPrice is the
// price captured when the line was added to the cart.
type OrderLine struct {
	ProductID uuid.UUID              `json:"product_id" validate:"required"`
	Name      string                 `json:"name" validate:"required,max=200"`
	Category  string                 `json:"category,omitempty" validate:"max=100"`
	Mode      enums.Mode             `json:"mode" validate:"required,oneof=retail wholesale"`
	UnitPrice decimal.Decimal        `json:"unit_price"`
	Quantity  int                    `json:"quantity" validate:"gte=1"`
	Sizes     catalog.SizeQuantities `json:"sizes,omitempty"`
}

// PricingLine converts the line for pricing.Calculator.
func (l OrderLine) PricingLine() pricing.Line {
	return pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity, Mode: l.Mode}
}

// OrderRequest is the payload of POST /orders. Total is the rounded grand
// total the customer saw.
type OrderRequest struct {
	Customer ShippingDetails `json:"customer"`
	Items    []OrderLine     `json:"items" validate:"required,min=1,dive"`
	Total    int64           `json:"total" validate:"gte=0"`
	Mode     enums.Mode      `json:"mode" validate:"required,oneof=retail wholesale"`
}

type Order struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Customer  ShippingDetails   `json:"customer"`
	Items     []OrderLine       `json:"items"`
	Mode      enums.Mode        `json:"mode"`
	Status    enums.OrderStatus `json:"status"`
	TaxPolicy string            `json:"tax_policy"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Tax       decimal.Decimal   `json:"tax"`
	Total     int64             `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderDetail adds the display breakdown derived from the stored total.
type OrderDetail struct {
	Order
	Breakdown pricing.DisplayBreakdown `json:"breakdown"`
}

type OrderPage struct {
	Orders     []Order `json:"orders"`
	NextCursor string  `json:"next_cursor,omitempty"`
}
