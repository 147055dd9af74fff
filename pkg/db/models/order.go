package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
)

// Order is a submitted cart. Total is the rounded figure the customer
// confirmed; Subtotal and Tax keep full precision.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	CustomerName    string            `gorm:"column:customer_name;not null"`
	CustomerContact string            `gorm:"column:customer_contact;not null"`
	CustomerAddress string            `gorm:"column:customer_address;not null"`
	Mode            enums.Mode        `gorm:"column:mode;not null"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:pending"`
	TaxPolicy       string            `gorm:"column:tax_policy;not null"`
	Subtotal        decimal.Decimal   `gorm:"column:subtotal;type:numeric(14,4);not null"`
	Tax             decimal.Decimal   `gorm:"column:tax;type:numeric(14,4);not null"`
	Total           int64             `gorm:"column:total;not null"`
	IdempotencyKey  *string           `gorm:"column:idempotency_key"`
	LineItems       []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
}
