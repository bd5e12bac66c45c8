package persistence

import (
	"context"

	appbilling "github.com/meterly/backend/internal/application/billing"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. A returned error or a panic
// rolls the transaction back; otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// SubscriptionRepo returns the subscription repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SubscriptionRepo() billing.SubscriptionRepository {
	return NewGormSubscriptionRepository(r.tx)
}

// UsageRepo returns the usage repository scoped to the current transaction.
func (r *gormTransactionalRepositories) UsageRepo() billing.UsageRepository {
	return NewGormUsageRepository(r.tx)
}

// TransactionRepo returns the payment transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TransactionRepo() billing.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// UserRepo returns the user repository scoped to the current transaction.
func (r *gormTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbilling.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
