package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsage(t *testing.T) {
	userID := uuid.New()
	subID := uuid.New()

	t.Run("captures before and after balances", func(t *testing.T) {
		u, err := NewUsage(userID, Deduction{
			SubscriptionID: subID,
			UnitsUsed:      100,
			BalanceBefore:  100,
			BalanceAfter:   0,
			Status:         SubscriptionStatusCompleted,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(100), u.UnitsUsed)
		assert.Equal(t, int64(100), u.TotalUnits)
		assert.Equal(t, int64(0), u.RemainingUnits)
		assert.Equal(t, SubscriptionStatusCompleted, u.Status)
		assert.NotEqual(t, uuid.Nil, u.ID)
	})

	t.Run("ids follow creation order", func(t *testing.T) {
		d := Deduction{SubscriptionID: subID, UnitsUsed: 1, BalanceBefore: 2, BalanceAfter: 1, Status: SubscriptionStatusActive}
		first, err := NewUsage(userID, d)
		require.NoError(t, err)
		second, err := NewUsage(userID, d)
		require.NoError(t, err)

		assert.Equal(t, uuid.Version(7), first.ID.Version())
		assert.Less(t, first.ID.String(), second.ID.String())
	})

	t.Run("rejects inconsistent balances", func(t *testing.T) {
		_, err := NewUsage(userID, Deduction{SubscriptionID: subID, UnitsUsed: 5, BalanceBefore: 10, BalanceAfter: 4})
		assert.ErrorIs(t, err, shared.ErrIntegrity)

		_, err = NewUsage(userID, Deduction{SubscriptionID: subID, UnitsUsed: 5, BalanceBefore: 3, BalanceAfter: -2})
		assert.ErrorIs(t, err, shared.ErrIntegrity)
	})

	t.Run("rejects zero units", func(t *testing.T) {
		_, err := NewUsage(userID, Deduction{SubscriptionID: subID, UnitsUsed: 0, BalanceBefore: 3, BalanceAfter: 3})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		used, total int64
		want        float64
	}{
		{25, 100, 25},
		{100, 100, 100},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{5, 0, 0},
		{0, 50, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.used, tt.total))
	}
}

func TestNewUsageStatistics(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), newTestPlan(t, 50))
	require.NoError(t, err)

	t.Run("no usage reports zeros over current balance", func(t *testing.T) {
		stats := NewUsageStatistics(nil, sub)

		assert.Equal(t, UsageStatistics{
			TotalUnits:     50,
			RemainingUnits: 50,
			Status:         SubscriptionStatusActive,
		}, stats)
	})

	t.Run("latest usage reports against current balance", func(t *testing.T) {
		d, err := sub.Deduct(20)
		require.NoError(t, err)
		u, err := NewUsage(sub.UserID, d)
		require.NoError(t, err)

		stats := NewUsageStatistics(u, sub)

		assert.True(t, stats.HasUsage)
		assert.Equal(t, int64(20), stats.UnitsUsed)
		assert.Equal(t, int64(50), stats.TotalUnits)
		assert.Equal(t, int64(30), stats.RemainingUnits)
		assert.Equal(t, float64(40), stats.UsagePercentage)
		require.NotNil(t, stats.LastUsedAt)
	})
}
