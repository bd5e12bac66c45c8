package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUsageRepository implements billing.UsageRepository using GORM.
// The ledger is append-only: there is no update or delete.
type GormUsageRepository struct {
	db *gorm.DB
}

// NewGormUsageRepository creates a new GormUsageRepository
func NewGormUsageRepository(db *gorm.DB) *GormUsageRepository {
	return &GormUsageRepository{db: db}
}

// Create appends a usage row
func (r *GormUsageRepository) Create(ctx context.Context, usage *billing.Usage) error {
	return r.db.WithContext(ctx).Create(models.UsageModelFromDomain(usage)).Error
}

// FindLatestByUser returns the user's newest usage row. Rows sharing a
// created_at are ordered by their time-ordered id.
func (r *GormUsageRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*billing.Usage, error) {
	var model models.UsageModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists usage rows, newest first unless another order is requested
func (r *GormUsageRepository) FindAll(ctx context.Context, filter billing.UsageFilter) ([]billing.Usage, error) {
	var usageModels []models.UsageModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.UsageModel{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, UsageSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).Order("id DESC")

	if err := query.Find(&usageModels).Error; err != nil {
		return nil, err
	}
	rows := make([]billing.Usage, len(usageModels))
	for i := range usageModels {
		rows[i] = *usageModels[i].ToDomain()
	}
	return rows, nil
}

// Count counts usage rows matching the filter
func (r *GormUsageRepository) Count(ctx context.Context, filter billing.UsageFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.UsageModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormUsageRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.UsageFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.SubscriptionID != nil {
		query = query.Where("subscription_id = ?", *filter.SubscriptionID)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}

// Ensure GormUsageRepository implements billing.UsageRepository
var _ billing.UsageRepository = (*GormUsageRepository)(nil)
