package billing

import (
	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/shared"
)

// SubscriptionStatus is the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCompleted SubscriptionStatus = "completed"
)

// IsValid reports whether s is a known status
func (s SubscriptionStatus) IsValid() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusCompleted
}

// String returns the status as stored
func (s SubscriptionStatus) String() string {
	return string(s)
}

// Subscription is a user's balance of prepaid units bought through a plan.
// A user holds at most one non-deleted subscription.
type Subscription struct {
	shared.BaseAggregateRoot
	shared.SoftDeletable
	UserID     uuid.UUID
	PlanID     uuid.UUID
	TotalUnits int64
	Status     SubscriptionStatus
}

// Deduction is the outcome of removing units from a subscription balance
type Deduction struct {
	SubscriptionID uuid.UUID
	UnitsUsed      int64
	BalanceBefore  int64
	BalanceAfter   int64
	Status         SubscriptionStatus
}

// NewSubscription creates an active subscription holding the plan's allotment
func NewSubscription(userID uuid.UUID, plan *Plan) (*Subscription, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("User ID is required")
	}
	if plan == nil || plan.IsDeleted {
		return nil, ErrPlanNotFound
	}
	return &Subscription{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		PlanID:            plan.ID,
		TotalUnits:        plan.Units,
		Status:            SubscriptionStatusActive,
	}, nil
}

// IsActive reports whether units can currently be drawn
func (s *Subscription) IsActive() bool {
	return !s.IsDeleted && s.Status == SubscriptionStatusActive
}

// CanDeduct reports whether the balance covers units
func (s *Subscription) CanDeduct(units int64) bool {
	return units > 0 && s.TotalUnits >= units
}

// Deduct removes units from the balance and completes the subscription once it
// is exhausted. It never leaves the balance negative.
func (s *Subscription) Deduct(units int64) (Deduction, error) {
	if units <= 0 {
		return Deduction{}, shared.ErrInvalidInput.WithMessage("Units used must be greater than zero")
	}
	if s.IsDeleted {
		return Deduction{}, ErrSubscriptionNotFound
	}
	if !s.CanDeduct(units) {
		return Deduction{}, ErrInsufficientUnits
	}
	before := s.TotalUnits
	s.TotalUnits -= units
	s.syncStatus()
	s.bump()
	return Deduction{
		SubscriptionID: s.ID,
		UnitsUsed:      units,
		BalanceBefore:  before,
		BalanceAfter:   s.TotalUnits,
		Status:         s.Status,
	}, nil
}

// Renew tops the subscription up with the plan's allotment and moves it onto
// that plan. A completed subscription becomes active again.
func (s *Subscription) Renew(plan *Plan) error {
	if s.IsDeleted {
		return shared.ErrInvalidState.WithMessage("Cannot renew a deleted subscription")
	}
	if plan == nil || plan.IsDeleted {
		return ErrPlanNotFound
	}
	if plan.Units <= 0 {
		return shared.ErrInvalidInput.WithMessage("Plan units must be greater than zero")
	}
	s.PlanID = plan.ID
	s.TotalUnits += plan.Units
	s.syncStatus()
	s.bump()
	return nil
}

// Correct is an administrative override of the balance and/or status
func (s *Subscription) Correct(totalUnits *int64, status *SubscriptionStatus) error {
	if s.IsDeleted {
		return shared.ErrInvalidState.WithMessage("Cannot modify a deleted subscription")
	}
	units := s.TotalUnits
	if totalUnits != nil {
		if *totalUnits < 0 {
			return shared.ErrInvalidInput.WithMessage("Total units cannot be negative")
		}
		units = *totalUnits
	}
	next := s.Status
	if status != nil {
		if !status.IsValid() {
			return shared.ErrInvalidInput.WithMessage("Invalid subscription status")
		}
		next = *status
	} else if totalUnits != nil {
		next = statusForBalance(units)
	}
	if next == SubscriptionStatusActive && units <= 0 {
		return shared.ErrInvalidState.WithMessage("An active subscription needs a positive balance")
	}
	s.TotalUnits = units
	s.Status = next
	s.bump()
	return nil
}

// Delete soft-deletes the subscription
func (s *Subscription) Delete() {
	s.MarkDeleted()
	s.bump()
}

func (s *Subscription) bump() {
	s.Touch()
	s.IncrementVersion()
}

func (s *Subscription) syncStatus() {
	s.Status = statusForBalance(s.TotalUnits)
}

func statusForBalance(units int64) SubscriptionStatus {
	if units <= 0 {
		return SubscriptionStatusCompleted
	}
	return SubscriptionStatusActive
}
