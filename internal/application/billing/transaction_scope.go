package billing

import (
	"context"

	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/identity"
)

// TransactionScope provides transactional access to billing repositories.
// All repository operations inside Execute share one database transaction and
// are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to the current transaction.
type TransactionalRepositories interface {
	SubscriptionRepo() billing.SubscriptionRepository
	UsageRepo() billing.UsageRepository
	TransactionRepo() billing.TransactionRepository
	UserRepo() identity.UserRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Tests use it with in-memory fakes.
type NoOpTransactionScope struct {
	subscriptionRepo billing.SubscriptionRepository
	usageRepo        billing.UsageRepository
	transactionRepo  billing.TransactionRepository
	userRepo         identity.UserRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	subscriptionRepo billing.SubscriptionRepository,
	usageRepo billing.UsageRepository,
	transactionRepo billing.TransactionRepository,
	userRepo identity.UserRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		transactionRepo:  transactionRepo,
		userRepo:         userRepo,
	}
}

// Execute runs fn directly with the wrapped repositories.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SubscriptionRepo returns the subscription repository
func (s *NoOpTransactionScope) SubscriptionRepo() billing.SubscriptionRepository {
	return s.subscriptionRepo
}

// UsageRepo returns the usage repository
func (s *NoOpTransactionScope) UsageRepo() billing.UsageRepository {
	return s.usageRepo
}

// TransactionRepo returns the payment transaction repository
func (s *NoOpTransactionScope) TransactionRepo() billing.TransactionRepository {
	return s.transactionRepo
}

// UserRepo returns the user repository
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository {
	return s.userRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
