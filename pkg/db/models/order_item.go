package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is an immutable line snapshot within an Order. unit_price is
// captured at submission time and never re-read from the live menu.
type OrderItem struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID          uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null"`
	Quantity            int             `gorm:"column:quantity;not null"`
	UnitPrice           decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice          decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`
	SpecialInstructions *string         `gorm:"column:special_instructions"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (OrderItem) TableName() string { return "order_items" }
