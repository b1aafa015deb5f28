package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorProfile describes a campus vendor stall.
type VendorProfile struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessName      string          `gorm:"column:business_name;not null"`
	Description       *string         `gorm:"column:description"`
	LogoURL           *string         `gorm:"column:logo_url"`
	BusinessPhone     *string         `gorm:"column:business_phone"`
	Address           *string         `gorm:"column:address"`
	DeliveryFee       decimal.Decimal `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	IsAcceptingOrders bool            `gorm:"column:is_accepting_orders;not null;default:true"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (VendorProfile) TableName() string { return "vendor_profiles" }
