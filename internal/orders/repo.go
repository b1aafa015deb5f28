package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusbite/campusbite-backend/pkg/db/models"
	"github.com/campusbite/campusbite-backend/pkg/enums"
	"github.com/campusbite/campusbite-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Omit("Items", "StatusHistory").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", orderID).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrderStatusCAS(ctx context.Context, orderID uuid.UUID, observed, target enums.OrderStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = target
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, observed).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) InsertStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, int64, error) {
	return r.list(ctx, "customer_id = ?", customerID, params, filters)
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, int64, error) {
	return r.list(ctx, "vendor_id = ?", vendorID, params, filters)
}

func (r *repository) list(ctx context.Context, cond string, id uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, int64, error) {
	params = params.Normalize()

	q := r.db.WithContext(ctx).Model(&models.Order{}).Where(cond, id)
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := q.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) ListOrderLines(ctx context.Context, orderIDs []uuid.UUID) ([]OrderLineRow, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	var rows []OrderLineRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select(`order_items.id,
			order_items.order_id,
			order_items.menu_item_id,
			menu_items.name AS menu_item_name,
			menu_items.image_url AS menu_item_image_url,
			order_items.quantity,
			order_items.unit_price,
			order_items.total_price,
			order_items.special_instructions`).
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Where("order_items.order_id IN ?", orderIDs).
		Order("order_items.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
