package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campusbite/campusbite-backend/pkg/enums"
)

// Order is the durable record of a placed purchase. total_amount is always
// subtotal + delivery_fee + tax_amount, computed server-side at submission.
// Orders are never hard-deleted after a successful submission; cancellation
// is a status. The one exception is the compensating delete during a failed
// submission, before the order was ever reported as placed.
type Order struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         string               `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID          uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	VendorID            uuid.UUID            `gorm:"column:vendor_id;type:uuid;not null;index"`
	Status              enums.OrderStatus    `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Subtotal            decimal.Decimal      `gorm:"column:subtotal;type:numeric(10,2);not null"`
	DeliveryFee         decimal.Decimal      `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	TaxAmount           decimal.Decimal      `gorm:"column:tax_amount;type:numeric(10,2);not null;default:0"`
	TotalAmount         decimal.Decimal      `gorm:"column:total_amount;type:numeric(10,2);not null"`
	PaymentMethod       enums.PaymentMethod  `gorm:"column:payment_method;type:payment_method;not null;default:'cash'"`
	SpecialInstructions *string              `gorm:"column:special_instructions"`
	CancellationReason  *string              `gorm:"column:cancellation_reason"`
	Items               []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory       []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
