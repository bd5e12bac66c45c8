package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(t *testing.T, units int64) *Plan {
	t.Helper()
	plan, err := NewPlan("Plan "+uuid.NewString()[:8], "", ngn(t, "1000"), units)
	require.NoError(t, err)
	return plan
}

func TestNewSubscription(t *testing.T) {
	plan := newTestPlan(t, 100)
	userID := uuid.New()

	t.Run("starts active with plan allotment", func(t *testing.T) {
		sub, err := NewSubscription(userID, plan)

		require.NoError(t, err)
		assert.Equal(t, userID, sub.UserID)
		assert.Equal(t, plan.ID, sub.PlanID)
		assert.Equal(t, int64(100), sub.TotalUnits)
		assert.Equal(t, SubscriptionStatusActive, sub.Status)
		assert.True(t, sub.IsActive())
	})

	t.Run("requires user", func(t *testing.T) {
		_, err := NewSubscription(uuid.Nil, plan)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("requires live plan", func(t *testing.T) {
		deleted := newTestPlan(t, 10)
		deleted.Delete()

		_, err := NewSubscription(userID, deleted)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = NewSubscription(userID, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSubscription_Deduct(t *testing.T) {
	t.Run("decrements balance and reports snapshot", func(t *testing.T) {
		sub, _ := NewSubscription(uuid.New(), newTestPlan(t, 100))

		d, err := sub.Deduct(30)

		require.NoError(t, err)
		assert.Equal(t, int64(100), d.BalanceBefore)
		assert.Equal(t, int64(70), d.BalanceAfter)
		assert.Equal(t, int64(30), d.UnitsUsed)
		assert.Equal(t, SubscriptionStatusActive, d.Status)
		assert.Equal(t, int64(70), sub.TotalUnits)
	})

	t.Run("exact balance completes subscription", func(t *testing.T) {
		sub, _ := NewSubscription(uuid.New(), newTestPlan(t, 100))

		d, err := sub.Deduct(100)

		require.NoError(t, err)
		assert.Equal(t, int64(0), d.BalanceAfter)
		assert.Equal(t, SubscriptionStatusCompleted, d.Status)
		assert.Equal(t, SubscriptionStatusCompleted, sub.Status)
		assert.False(t, sub.IsActive())
	})

	t.Run("one more than balance is rejected without mutation", func(t *testing.T) {
		sub, _ := NewSubscription(uuid.New(), newTestPlan(t, 100))

		_, err := sub.Deduct(101)

		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		assert.Equal(t, int64(100), sub.TotalUnits)
		assert.Equal(t, SubscriptionStatusActive, sub.Status)
	})

	t.Run("non-positive units are invalid", func(t *testing.T) {
		sub, _ := NewSubscription(uuid.New(), newTestPlan(t, 100))

		for _, units := range []int64{0, -1} {
			_, err := sub.Deduct(units)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		}
		assert.Equal(t, int64(100), sub.TotalUnits)
	})
}

func TestSubscription_Renew(t *testing.T) {
	t.Run("completed subscription becomes active on top-up", func(t *testing.T) {
		sub, _ := NewSubscription(uuid.New(), newTestPlan(t, 10))
		_, err := sub.Deduct(10)
		require.NoError(t, err)
		require.Equal(t, SubscriptionStatusCompleted, sub.Status)

		next := newTestPlan(t, 50)
		require.NoError(t, sub.Renew(next))

		assert.Equal(t, int64(50), sub.TotalUnits)
		assert.Equal(t, next.ID, sub.PlanID)
		assert.Equal(t, SubscriptionStatusActive, sub.Status)
	})

	t.Run("active subscription accumulates units", func(t *testing.T) {
		sub, _ := NewSubscription(uuid.New(), newTestPlan(t, 10))
		require.NoError(t, sub.Renew(newTestPlan(t, 5)))

		assert.Equal(t, int64(15), sub.TotalUnits)
		assert.Equal(t, SubscriptionStatusActive, sub.Status)
	})

	t.Run("deleted subscription cannot renew", func(t *testing.T) {
		sub, _ := NewSubscription(uuid.New(), newTestPlan(t, 10))
		sub.Delete()

		err := sub.Renew(newTestPlan(t, 5))
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestSubscription_Correct(t *testing.T) {
	completed := SubscriptionStatusCompleted
	active := SubscriptionStatusActive
	invalid := SubscriptionStatus("paused")

	tests := []struct {
		name       string
		units      *int64
		status     *SubscriptionStatus
		wantErr    error
		wantUnits  int64
		wantStatus SubscriptionStatus
	}{
		{"balance only derives status", ptr(int64(0)), nil, nil, 0, SubscriptionStatusCompleted},
		{"positive balance stays active", ptr(int64(40)), nil, nil, 40, SubscriptionStatusActive},
		{"explicit completed", nil, &completed, nil, 100, SubscriptionStatusCompleted},
		{"negative balance", ptr(int64(-1)), nil, shared.ErrInvalidInput, 100, SubscriptionStatusActive},
		{"unknown status", nil, &invalid, shared.ErrInvalidInput, 100, SubscriptionStatusActive},
		{"active with empty balance", ptr(int64(0)), &active, shared.ErrInvalidState, 100, SubscriptionStatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _ := NewSubscription(uuid.New(), newTestPlan(t, 100))

			err := sub.Correct(tt.units, tt.status)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantUnits, sub.TotalUnits)
			assert.Equal(t, tt.wantStatus, sub.Status)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
