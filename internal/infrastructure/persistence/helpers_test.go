package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/domain/shared/valueobject"
	"github.com/meterly/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens a file-backed SQLite database. Transactions begin
// IMMEDIATE so concurrent writers queue on the busy timeout instead of failing.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "meter.db") +
		"?_busy_timeout=10000&_txlock=immediate&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.PlanModel{},
		&models.SubscriptionModel{},
		&models.UsageModel{},
		&models.TransactionModel{},
	))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestPlan(t *testing.T, name string, units int64) *billing.Plan {
	t.Helper()
	price, err := valueobject.NewMoney(decimal.NewFromInt(1500), valueobject.DefaultCurrency)
	require.NoError(t, err)
	plan, err := billing.NewPlan(name, "test plan", price, units)
	require.NoError(t, err)
	return plan
}

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewGuestUser(uuid.NewString()[:8] + "@example.com")
	require.NoError(t, err)
	return user
}

// seedSubscription persists a user, a plan with the given units and the user's subscription.
func seedSubscription(t *testing.T, db *gorm.DB, units int64) (*identity.User, *billing.Subscription) {
	t.Helper()
	ctx := t.Context()

	user := newTestUser(t)
	require.NoError(t, NewGormUserRepository(db).Save(ctx, user))

	plan := newTestPlan(t, "Plan "+uuid.NewString()[:8], units)
	require.NoError(t, NewGormPlanRepository(db).Save(ctx, plan))

	sub, err := billing.NewSubscription(user.ID, plan)
	require.NoError(t, err)
	require.NoError(t, NewGormSubscriptionRepository(db).Save(ctx, sub))
	return user, sub
}
