package persistence

import (
	"context"
	"errors"

	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements billing.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByReference finds a payment transaction by its gateway reference
func (r *GormTransactionRepository) FindByReference(ctx context.Context, reference string) (*billing.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrTransactionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a payment transaction
func (r *GormTransactionRepository) Save(ctx context.Context, txn *billing.Transaction) error {
	err := r.db.WithContext(ctx).Save(models.TransactionModelFromDomain(txn)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists.WithMessage("Payment reference already used")
	}
	return err
}

// Ensure GormTransactionRepository implements billing.TransactionRepository
var _ billing.TransactionRepository = (*GormTransactionRepository)(nil)
