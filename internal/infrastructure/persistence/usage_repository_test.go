package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordUsage(t *testing.T, repo *GormUsageRepository, userID uuid.UUID, sub *billing.Subscription, used int64, at time.Time) *billing.Usage {
	t.Helper()
	usage, err := billing.NewUsage(userID, billing.Deduction{
		SubscriptionID: sub.ID,
		UnitsUsed:      used,
		BalanceBefore:  100,
		BalanceAfter:   100 - used,
		Status:         billing.SubscriptionStatusActive,
	})
	require.NoError(t, err)
	usage.CreatedAt = at
	require.NoError(t, repo.Create(t.Context(), usage))
	return usage
}

func TestUsageRepository_FindLatestByUser(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormUsageRepository(db)
	user, sub := seedSubscription(t, db, 100)
	base := time.Now().UTC().Add(-time.Hour)

	recordUsage(t, repo, user.ID, sub, 5, base)
	newest := recordUsage(t, repo, user.ID, sub, 7, base.Add(time.Minute))
	recordUsage(t, repo, user.ID, sub, 9, base.Add(-time.Minute))

	latest, err := repo.FindLatestByUser(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, latest.ID)
	assert.Equal(t, int64(7), latest.UnitsUsed)
}

func TestUsageRepository_FindLatestByUser_SameTimestamp(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormUsageRepository(db)
	user, sub := seedSubscription(t, db, 100)
	at := time.Now().UTC().Truncate(time.Second)

	recordUsage(t, repo, user.ID, sub, 5, at)
	recordUsage(t, repo, user.ID, sub, 7, at)
	newest := recordUsage(t, repo, user.ID, sub, 9, at)

	latest, err := repo.FindLatestByUser(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, latest.ID)

	rows, err := repo.FindAll(t.Context(), billing.UsageFilter{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{9, 7, 5}, []int64{rows[0].UnitsUsed, rows[1].UnitsUsed, rows[2].UnitsUsed})
}

func TestUsageRepository_FindLatestByUser_NoRows(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormUsageRepository(db)

	_, err := repo.FindLatestByUser(t.Context(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUsageRepository_FindAll(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := t.Context()
	repo := NewGormUsageRepository(db)
	alice, aliceSub := seedSubscription(t, db, 100)
	bob, bobSub := seedSubscription(t, db, 100)
	base := time.Now().UTC().Add(-time.Hour)

	for i := range 3 {
		recordUsage(t, repo, alice.ID, aliceSub, int64(i+1), base.Add(time.Duration(i)*time.Second))
	}
	recordUsage(t, repo, bob.ID, bobSub, 4, base)

	all, err := repo.FindAll(ctx, billing.UsageFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	filter := billing.UsageFilter{Filter: shared.DefaultFilter(), UserID: &alice.ID}
	filter.PageSize = 2
	page, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].UnitsUsed)
	assert.Equal(t, int64(2), page[1].UnitsUsed)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
