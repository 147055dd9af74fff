package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Sizes keep the admin-entered order.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	Category       string          `gorm:"column:category;not null"`
	RetailPrice    decimal.Decimal `gorm:"column:retail_price;type:numeric(12,2);not null"`
	WholesalePrice decimal.Decimal `gorm:"column:wholesale_price;type:numeric(12,2);not null"`
	MOQ            int             `gorm:"column:moq;not null;default:0"`
	Sizes          pq.Float64Array `gorm:"column:sizes;type:double precision[];not null"`
	Stock          int             `gorm:"column:stock;not null;default:0"`
	Images         pq.StringArray  `gorm:"column:images;type:text[];not null"`
	Tag            *string         `gorm:"column:tag"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
