package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusbite/campusbite-backend/pkg/db/models"
	"github.com/campusbite/campusbite-backend/pkg/enums"
	"github.com/campusbite/campusbite-backend/pkg/pagination"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	// UpdateOrderStatusCAS flips the status only when the row still holds the
	// observed status; it reports whether a row was updated.
	UpdateOrderStatusCAS(ctx context.Context, orderID uuid.UUID, observed, target enums.OrderStatus, updates map[string]any) (bool, error)
	InsertStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, int64, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, int64, error)
	ListOrderLines(ctx context.Context, orderIDs []uuid.UUID) ([]OrderLineRow, error)
}

// VendorLoader resolves vendors for submission checks and list enrichment.
type VendorLoader interface {
	FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error)
	Summaries(ctx context.Context, vendorIDs []uuid.UUID) (map[uuid.UUID]CounterpartySummary, error)
}

// CustomerLoader resolves customer summaries for vendor-facing lists.
type CustomerLoader interface {
	Summaries(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID]CounterpartySummary, error)
}

// NumberAllocator hands out human-readable order numbers.
type NumberAllocator interface {
	Next(ctx context.Context) (string, error)
}
