package persistence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	appbilling "github.com/meterly/backend/internal/application/billing"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRepository_SaveAndFindCurrent(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSubscriptionRepository(db)
	user, sub := seedSubscription(t, db, 100)

	found, err := repo.FindCurrentByUser(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, found.ID)
	assert.Equal(t, int64(100), found.TotalUnits)
	assert.Equal(t, billing.SubscriptionStatusActive, found.Status)
	assert.Equal(t, 1, found.Version)
}

func TestSubscriptionRepository_FindCurrentByUser_NotFound(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSubscriptionRepository(db)

	_, err := repo.FindCurrentByUser(t.Context(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubscriptionRepository_OneLiveSubscriptionPerUser(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := t.Context()
	repo := NewGormSubscriptionRepository(db)
	user, sub := seedSubscription(t, db, 10)

	plan := newTestPlan(t, "Second", 5)
	require.NoError(t, NewGormPlanRepository(db).Save(ctx, plan))

	second, err := billing.NewSubscription(user.ID, plan)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, second), billing.ErrSubscriptionExists)

	sub.Delete()
	require.NoError(t, repo.Save(ctx, sub))

	third, err := billing.NewSubscription(user.ID, plan)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, third))

	current, err := repo.FindCurrentByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, third.ID, current.ID)
}

func TestSubscriptionRepository_Save_StaleVersion(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := t.Context()
	repo := NewGormSubscriptionRepository(db)
	_, sub := seedSubscription(t, db, 10)

	stale, err := repo.FindByID(ctx, sub.ID)
	require.NoError(t, err)

	_, err = repo.DeductUnits(ctx, sub.ID, 3)
	require.NoError(t, err)

	units := int64(50)
	require.NoError(t, stale.Correct(&units, nil))
	err = repo.Save(ctx, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	current, err := repo.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), current.TotalUnits)
}

func TestSubscriptionRepository_DeductUnits(t *testing.T) {
	t.Run("partial deduction keeps subscription active", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormSubscriptionRepository(db)
		_, sub := seedSubscription(t, db, 100)

		d, err := repo.DeductUnits(t.Context(), sub.ID, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(100), d.BalanceBefore)
		assert.Equal(t, int64(70), d.BalanceAfter)
		assert.Equal(t, billing.SubscriptionStatusActive, d.Status)

		found, err := repo.FindByID(t.Context(), sub.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(70), found.TotalUnits)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("exact balance completes subscription", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormSubscriptionRepository(db)
		_, sub := seedSubscription(t, db, 25)

		d, err := repo.DeductUnits(t.Context(), sub.ID, 25)
		require.NoError(t, err)
		assert.Equal(t, int64(0), d.BalanceAfter)
		assert.Equal(t, billing.SubscriptionStatusCompleted, d.Status)
	})

	t.Run("over deduction changes nothing", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormSubscriptionRepository(db)
		_, sub := seedSubscription(t, db, 5)

		_, err := repo.DeductUnits(t.Context(), sub.ID, 6)
		assert.ErrorIs(t, err, billing.ErrInsufficientUnits)

		found, err := repo.FindByID(t.Context(), sub.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), found.TotalUnits)
		assert.Equal(t, billing.SubscriptionStatusActive, found.Status)
		assert.Equal(t, 1, found.Version)
	})

	t.Run("unknown subscription", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormSubscriptionRepository(db)

		_, err := repo.DeductUnits(t.Context(), uuid.New(), 1)
		assert.ErrorIs(t, err, billing.ErrSubscriptionNotFound)
	})

	t.Run("non-positive units", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormSubscriptionRepository(db)

		_, err := repo.DeductUnits(t.Context(), uuid.New(), 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestSubscriptionRepository_DeductUnits_Concurrent(t *testing.T) {
	const (
		balance = 7
		callers = 20
	)

	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	user, sub := seedSubscription(t, db, balance)

	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int64
		insufficient atomic.Int64
		unexpected   = make(chan error, callers)
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Execute(context.Background(), func(repos appbilling.TransactionalRepositories) error {
				d, err := repos.SubscriptionRepo().DeductUnits(context.Background(), sub.ID, 1)
				if err != nil {
					return err
				}
				usage, err := billing.NewUsage(user.ID, *d)
				if err != nil {
					return err
				}
				return repos.UsageRepo().Create(context.Background(), usage)
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, billing.ErrInsufficientUnits):
				insufficient.Add(1)
			default:
				unexpected <- err
			}
		}()
	}
	wg.Wait()
	close(unexpected)

	for err := range unexpected {
		t.Errorf("unexpected error: %v", err)
	}
	assert.Equal(t, int64(balance), succeeded.Load())
	assert.Equal(t, int64(callers-balance), insufficient.Load())

	repo := NewGormSubscriptionRepository(db)
	found, err := repo.FindByID(t.Context(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), found.TotalUnits)
	assert.Equal(t, billing.SubscriptionStatusCompleted, found.Status)

	used, err := repo.UsedUnits(t.Context(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(balance), used)
}

func TestSubscriptionRepository_FindAll(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := t.Context()
	repo := NewGormSubscriptionRepository(db)
	_, first := seedSubscription(t, db, 10)
	_, _ = seedSubscription(t, db, 20)
	_, err := repo.DeductUnits(ctx, first.ID, 10)
	require.NoError(t, err)

	filter := shared.DefaultFilter()
	all, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filter.Filters["status"] = billing.SubscriptionStatusCompleted.String()
	completed, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, first.ID, completed[0].ID)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSubscriptionRepository_DeductUnits_SQL(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	mock := mockDB.Mock
	repo := NewGormSubscriptionRepository(mockDB.DB)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "subscriptions" SET .*"total_units"=total_units - \$.* WHERE id = \$\d+ AND is_deleted = \$\d+ AND total_units >= \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE id = \$1 AND is_deleted = \$2`).
		WithArgs(id, false, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_units", "status", "version"}).
			AddRow(id, 3, "active", 1))

	_, err := repo.DeductUnits(context.Background(), id, 5)
	assert.ErrorIs(t, err, billing.ErrInsufficientUnits)
	mockDB.ExpectationsWereMet(t)
}
