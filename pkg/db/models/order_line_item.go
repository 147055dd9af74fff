package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
)

// OrderLineItem snapshots one cart line. ProductID is nulled if the product
// is later deleted.
type OrderLineItem struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID              `gorm:"column:order_id;type:uuid;not null"`
	Position  int                    `gorm:"column:position;not null"`
	ProductID *uuid.UUID             `gorm:"column:product_id;type:uuid"`
	Name      string                 `gorm:"column:name;not null"`
	Category  string                 `gorm:"column:category;not null"`
	Mode      enums.Mode             `gorm:"column:mode;not null"`
	UnitPrice decimal.Decimal        `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int                    `gorm:"column:quantity;not null"`
	Sizes     catalog.SizeQuantities `gorm:"column:sizes;type:jsonb;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
