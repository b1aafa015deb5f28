package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusbite/campusbite-backend/internal/orders"
	"github.com/campusbite/campusbite-backend/pkg/db/models"
)

// Repository reads vendor profiles for submission checks and order
// enrichment. It satisfies the orders package's VendorLoader.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a vendors repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindVendor loads one vendor profile.
func (r *Repository) FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error) {
	var vendor models.VendorProfile
	err := r.db.WithContext(ctx).
		Where("id = ?", vendorID).
		First(&vendor).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// Summaries batch-loads slim vendor views keyed by id. Missing ids are
// simply absent from the map.
func (r *Repository) Summaries(ctx context.Context, vendorIDs []uuid.UUID) (map[uuid.UUID]orders.CounterpartySummary, error) {
	out := map[uuid.UUID]orders.CounterpartySummary{}
	if len(vendorIDs) == 0 {
		return out, nil
	}

	var rows []models.VendorProfile
	err := r.db.WithContext(ctx).
		Select("id", "business_name", "business_phone", "logo_url").
		Where("id IN ?", vendorIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ID] = orders.CounterpartySummary{
			ID:       row.ID,
			Name:     row.BusinessName,
			Phone:    row.BusinessPhone,
			ImageURL: row.LogoURL,
		}
	}
	return out, nil
}
