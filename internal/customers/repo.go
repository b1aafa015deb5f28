package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusbite/campusbite-backend/internal/orders"
	"github.com/campusbite/campusbite-backend/pkg/db/models"
)

// Repository reads customer identities for vendor-facing order lists. It
// satisfies the orders package's CustomerLoader.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Summaries batch-loads slim customer views keyed by id.
func (r *Repository) Summaries(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID]orders.CounterpartySummary, error) {
	out := map[uuid.UUID]orders.CounterpartySummary{}
	if len(customerIDs) == 0 {
		return out, nil
	}

	var rows []models.User
	err := r.db.WithContext(ctx).
		Select("id", "full_name", "phone").
		Where("id IN ?", customerIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ID] = orders.CounterpartySummary{
			ID:    row.ID,
			Name:  row.FullName,
			Phone: row.Phone,
		}
	}
	return out, nil
}
