package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestPassword is the password given to every fixture user
const TestPassword = "Secret-pass-123"

// NewTestUser builds a user with a unique email and TestPassword
func NewTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()

	email := fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8])
	user, err := identity.NewUser(email, "Test "+string(role), TestPassword, role)
	require.NoError(t, err, "Failed to build test user")
	return user
}

// NewTestPlan builds a plan with a unique name granting units
func NewTestPlan(t *testing.T, units int64) *billing.Plan {
	t.Helper()

	price, err := valueobject.NewMoney(decimal.NewFromInt(5000), valueobject.DefaultCurrency)
	require.NoError(t, err)
	plan, err := billing.NewPlan("Plan "+uuid.NewString()[:8], "test plan", price, units)
	require.NoError(t, err, "Failed to build test plan")
	return plan
}

// NewTestSubscription builds an active subscription of user to plan
func NewTestSubscription(t *testing.T, user *identity.User, plan *billing.Plan) *billing.Subscription {
	t.Helper()

	sub, err := billing.NewSubscription(user.ID, plan)
	require.NoError(t, err, "Failed to build test subscription")
	return sub
}
