package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusbite/campusbite-backend/pkg/enums"
)

// User holds the customer identity fields the order surfaces need.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName  string         `gorm:"column:full_name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Phone     *string        `gorm:"column:phone"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
