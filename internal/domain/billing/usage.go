package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Usage is an append-only ledger entry for one deduction. TotalUnits is the
// balance before the deduction and RemainingUnits the balance after it.
type Usage struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	SubscriptionID uuid.UUID
	UnitsUsed      int64
	TotalUnits     int64
	RemainingUnits int64
	Status         SubscriptionStatus
	CreatedAt      time.Time
}

// NewUsage builds the ledger row for a completed deduction. IDs are UUIDv7,
// so within one process they increase in creation order.
func NewUsage(userID uuid.UUID, d Deduction) (*Usage, error) {
	if userID == uuid.Nil || d.SubscriptionID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Usage requires a user and a subscription")
	}
	if d.UnitsUsed <= 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Units used must be greater than zero")
	}
	if d.BalanceAfter < 0 || d.BalanceBefore-d.UnitsUsed != d.BalanceAfter {
		return nil, shared.ErrIntegrity.WithMessage("Usage balances are inconsistent")
	}
	return &Usage{
		ID:             uuid.Must(uuid.NewV7()),
		UserID:         userID,
		SubscriptionID: d.SubscriptionID,
		UnitsUsed:      d.UnitsUsed,
		TotalUnits:     d.BalanceBefore,
		RemainingUnits: d.BalanceAfter,
		Status:         d.Status,
		CreatedAt:      time.Now(),
	}, nil
}

// UsagePercentage returns UnitsUsed as a percentage of TotalUnits
func (u *Usage) UsagePercentage() float64 {
	return Percentage(u.UnitsUsed, u.TotalUnits)
}

// Percentage returns used/total*100 rounded to two places, or 0 when total is 0
func Percentage(used, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(used).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// UsageStatistics is the consumption snapshot reported for a user
type UsageStatistics struct {
	UnitsUsed       int64
	TotalUnits      int64
	RemainingUnits  int64
	UsagePercentage float64
	Status          SubscriptionStatus
	HasUsage        bool
	LastUsedAt      *time.Time
}

// NewUsageStatistics reports the latest deduction against the subscription's
// current balance. A nil latest yields zeroed usage over the current balance.
func NewUsageStatistics(latest *Usage, sub *Subscription) UsageStatistics {
	if latest == nil {
		return UsageStatistics{
			TotalUnits:     sub.TotalUnits,
			RemainingUnits: sub.TotalUnits,
			Status:         sub.Status,
		}
	}
	usedAt := latest.CreatedAt
	return UsageStatistics{
		UnitsUsed:       latest.UnitsUsed,
		TotalUnits:      latest.TotalUnits,
		RemainingUnits:  sub.TotalUnits,
		UsagePercentage: latest.UsagePercentage(),
		Status:          latest.Status,
		HasUsage:        true,
		LastUsedAt:      &usedAt,
	}
}
