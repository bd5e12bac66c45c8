package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/meterly/backend/internal/application/billing"
	identityapp "github.com/meterly/backend/internal/application/identity"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/infrastructure/auth"
	"github.com/meterly/backend/internal/infrastructure/config"
	"github.com/meterly/backend/internal/infrastructure/persistence"
	"github.com/meterly/backend/internal/interfaces/http/handler"
	"github.com/meterly/backend/internal/interfaces/http/middleware"
	"github.com/meterly/backend/internal/interfaces/http/router"
	"github.com/meterly/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestServer is the full HTTP engine wired to a real database
type TestServer struct {
	DB         *TestDB
	Engine     *gin.Engine
	JWTService *auth.JWTService
}

// NewTestServer builds the engine the way the server binary does, minus
// telemetry, Redis and the payment gateway
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	testDB := NewTestDB(t)
	log := zap.NewNop()

	userRepo := persistence.NewGormUserRepository(testDB.DB)
	planRepo := persistence.NewGormPlanRepository(testDB.DB)
	subRepo := persistence.NewGormSubscriptionRepository(testDB.DB)
	usageRepo := persistence.NewGormUsageRepository(testDB.DB)
	txScope := persistence.NewGormTransactionScope(testDB.DB)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "meterly-test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	recorder := billingapp.NewUsageRecorder(userRepo, txScope, log)
	reporter := billingapp.NewUsageReporter(subRepo, usageRepo, log)
	planService := billingapp.NewPlanService(planRepo, log)
	subscriptionService := billingapp.NewSubscriptionService(subRepo, planRepo, userRepo, log)
	health := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error { return testDB.SqlDB.PingContext(ctx) },
	})

	engine := router.NewEngine(router.Dependencies{
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
		ServiceName: "meterly-test",
		Handlers: router.Handlers{
			Auth:         handler.NewAuthHandler(authService),
			Usage:        handler.NewUsageHandler(recorder, reporter),
			Plan:         handler.NewPlanHandler(planService),
			Subscription: handler.NewSubscriptionHandler(subscriptionService),
			Health:       health,
		},
		JWTService: jwtService,
		Blacklist:  blacklist,
		Logger:     log,
	})

	return &TestServer{DB: testDB, Engine: engine, JWTService: jwtService}
}

// Request sends a JSON request, authenticated when token is not empty
func (ts *TestServer) Request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.ServeJSON(t, ts.Engine, method, path, body, testutil.WithBearer(token))
}

// Login signs user in over HTTP and returns the access token
func (ts *TestServer) Login(t *testing.T, user *identity.User) string {
	t.Helper()

	w := ts.Request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    user.Email,
		"password": testutil.TestPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := testutil.JSONResponseAs[identityapp.LoginResult](t, w)
	require.NotEmpty(t, result.AccessToken)
	return result.AccessToken
}
