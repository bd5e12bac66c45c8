package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSubscriptionRepository implements billing.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByID finds a non-deleted subscription by its ID
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCurrentByUser returns the user's single non-deleted subscription
func (r *GormSubscriptionRepository) FindCurrentByUser(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists non-deleted subscriptions matching the filter
func (r *GormSubscriptionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Subscription, error) {
	var subModels []models.SubscriptionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SubscriptionModel{}), filter)

	if err := query.Find(&subModels).Error; err != nil {
		return nil, err
	}
	subs := make([]billing.Subscription, len(subModels))
	for i := range subModels {
		subs[i] = *subModels[i].ToDomain()
	}
	return subs, nil
}

// Count counts non-deleted subscriptions matching the filter
func (r *GormSubscriptionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.SubscriptionModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UsedUnits sums the units recorded against the subscription
func (r *GormSubscriptionRepository) UsedUnits(ctx context.Context, subscriptionID uuid.UUID) (int64, error) {
	var used int64
	if err := r.db.WithContext(ctx).
		Model(&models.UsageModel{}).
		Select("COALESCE(SUM(units_used), 0)").
		Where("subscription_id = ?", subscriptionID).
		Scan(&used).Error; err != nil {
		return 0, err
	}
	return used, nil
}

// Save inserts a new subscription (version 1) or updates an existing one with
// optimistic locking on the version column.
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	if sub.Version <= 1 {
		err := r.db.WithContext(ctx).Create(models.SubscriptionModelFromDomain(sub)).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return billing.ErrSubscriptionExists
		}
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version = ?", sub.ID, sub.Version-1).
		Updates(map[string]interface{}{
			"plan_id":     sub.PlanID,
			"total_units": sub.TotalUnits,
			"status":      sub.Status.String(),
			"is_deleted":  sub.IsDeleted,
			"version":     sub.Version,
			"updated_at":  sub.UpdatedAt,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return billing.ErrSubscriptionExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("Subscription was modified by another transaction")
	}
	return nil
}

// DeductUnits checks and decrements the balance in one conditional UPDATE, so
// concurrent callers can never drive it below zero. The row is re-read within
// the same connection to report the balance after the deduction.
func (r *GormSubscriptionRepository) DeductUnits(ctx context.Context, subscriptionID uuid.UUID, units int64) (*billing.Deduction, error) {
	if units <= 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Units used must be greater than zero")
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&models.SubscriptionModel{}).
		Where("id = ? AND is_deleted = ? AND total_units >= ?", subscriptionID, false, units).
		Updates(map[string]interface{}{
			"total_units": gorm.Expr("total_units - ?", units),
			"status": gorm.Expr("CASE WHEN total_units - ? <= 0 THEN ? ELSE status END",
				units, billing.SubscriptionStatusCompleted.String()),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, subscriptionID); err != nil {
			return nil, err
		}
		return nil, billing.ErrInsufficientUnits
	}

	var model models.SubscriptionModel
	if err := db.Where("id = ?", subscriptionID).First(&model).Error; err != nil {
		return nil, err
	}
	return &billing.Deduction{
		SubscriptionID: subscriptionID,
		UnitsUsed:      units,
		BalanceBefore:  model.TotalUnits + units,
		BalanceAfter:   model.TotalUnits,
		Status:         billing.SubscriptionStatus(model.Status),
	}, nil
}

func (r *GormSubscriptionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SubscriptionSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormSubscriptionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = query.Where("is_deleted = ?", false)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "plan_id":
			query = query.Where("plan_id = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		}
	}
	return query
}

// Ensure GormSubscriptionRepository implements billing.SubscriptionRepository
var _ billing.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
