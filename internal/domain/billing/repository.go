package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/shared"
)

// PlanRepository persists plans
type PlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Plan, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// ExistsByName checks for a non-deleted plan with the name, ignoring excludeID
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, plan *Plan) error
}

// SubscriptionRepository persists subscriptions
type SubscriptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	// FindCurrentByUser returns the user's non-deleted subscription
	FindCurrentByUser(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Subscription, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// UsedUnits sums the units recorded against the subscription
	UsedUnits(ctx context.Context, subscriptionID uuid.UUID) (int64, error)
	Save(ctx context.Context, sub *Subscription) error
	// DeductUnits removes units only if the balance covers them, in a single
	// conditional update. It returns ErrInsufficientUnits and changes nothing otherwise.
	DeductUnits(ctx context.Context, subscriptionID uuid.UUID, units int64) (*Deduction, error)
}

// UsageFilter narrows ledger queries
type UsageFilter struct {
	shared.Filter
	UserID         *uuid.UUID
	SubscriptionID *uuid.UUID
}

// UsageRepository appends to and reads the usage ledger. There is no update or delete.
type UsageRepository interface {
	Create(ctx context.Context, usage *Usage) error
	// FindLatestByUser returns the newest row for the user, or shared.ErrNotFound
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*Usage, error)
	FindAll(ctx context.Context, filter UsageFilter) ([]Usage, error)
	Count(ctx context.Context, filter UsageFilter) (int64, error)
}

// TransactionRepository persists payment transactions
type TransactionRepository interface {
	FindByReference(ctx context.Context, reference string) (*Transaction, error)
	Save(ctx context.Context, txn *Transaction) error
}
