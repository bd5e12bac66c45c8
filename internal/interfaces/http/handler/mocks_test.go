package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/meterly/backend/internal/application/billing"
	identityapp "github.com/meterly/backend/internal/application/identity"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/auth"
	"github.com/meterly/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockUsageRecorder is a mock implementation of UsageRecorder
type MockUsageRecorder struct {
	mock.Mock
}

func (m *MockUsageRecorder) Record(ctx context.Context, req billingapp.RecordUsageRequest) (*billingapp.UsageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.UsageResponse), args.Error(1)
}

// MockUsageReporter is a mock implementation of UsageReporter
type MockUsageReporter struct {
	mock.Mock
}

func (m *MockUsageReporter) Statistics(ctx context.Context, userID uuid.UUID) (*billingapp.UsageStatisticsResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.UsageStatisticsResponse), args.Error(1)
}

func (m *MockUsageReporter) List(ctx context.Context, filter shared.Filter) ([]billingapp.UsageResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billingapp.UsageResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockUsageReporter) ListForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]billingapp.UsageResponse, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billingapp.UsageResponse), args.Get(1).(int64), args.Error(2)
}

// MockPlanService is a mock implementation of PlanService
type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) Create(ctx context.Context, req billingapp.CreatePlanRequest) (*billingapp.PlanResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.PlanResponse), args.Error(1)
}

func (m *MockPlanService) GetByID(ctx context.Context, id uuid.UUID) (*billingapp.PlanResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.PlanResponse), args.Error(1)
}

func (m *MockPlanService) List(ctx context.Context, filter shared.Filter) ([]billingapp.PlanResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billingapp.PlanResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockPlanService) Update(ctx context.Context, id uuid.UUID, req billingapp.UpdatePlanRequest) (*billingapp.PlanResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.PlanResponse), args.Error(1)
}

func (m *MockPlanService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSubscriptionService is a mock implementation of SubscriptionService
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Create(ctx context.Context, req billingapp.CreateSubscriptionRequest) (*billingapp.SubscriptionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.SubscriptionResponse), args.Error(1)
}

func (m *MockSubscriptionService) GetCurrent(ctx context.Context, userID uuid.UUID) (*billingapp.SubscriptionResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.SubscriptionResponse), args.Error(1)
}

func (m *MockSubscriptionService) GetByID(ctx context.Context, id uuid.UUID) (*billingapp.SubscriptionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.SubscriptionResponse), args.Error(1)
}

func (m *MockSubscriptionService) List(ctx context.Context, filter shared.Filter) ([]billingapp.SubscriptionResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billingapp.SubscriptionResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubscriptionService) Update(ctx context.Context, id uuid.UUID, req billingapp.UpdateSubscriptionRequest) (*billingapp.SubscriptionResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.SubscriptionResponse), args.Error(1)
}

func (m *MockSubscriptionService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubscriptionService) Renew(ctx context.Context, req billingapp.RenewSubscriptionRequest) (*billingapp.SubscriptionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.SubscriptionResponse), args.Error(1)
}

// MockPaymentService is a mock implementation of PaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Initiate(ctx context.Context, req billingapp.InitiatePaymentRequest) (*billingapp.InitiatePaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InitiatePaymentResponse), args.Error(1)
}

func (m *MockPaymentService) HandleCallback(ctx context.Context, reference string) (*billingapp.PaymentResponse, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.PaymentResponse), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, input identityapp.LoginInput) (*identityapp.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.LoginResult), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, input identityapp.RegisterInput) (*identityapp.UserInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.UserInfo), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, input identityapp.RefreshTokenInput) (*identityapp.TokenResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.TokenResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, input identityapp.LogoutInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockAuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*identityapp.UserInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.UserInfo), args.Error(1)
}

// asUser simulates the JWT middleware for the given role
func asUser(role identity.Role, userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &auth.Claims{
			UserID:      userID.String(),
			Role:        string(role),
			Permissions: role.Permissions(),
			TokenType:   auth.TokenTypeAccess,
		}
		claims.ID = uuid.NewString()
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTUserIDKey, claims.UserID)
		c.Set(middleware.JWTRoleKey, claims.Role)
		c.Set(middleware.JWTPermissions, claims.Permissions)
		c.Next()
	}
}

func newTestRouter(pre ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(pre...)
	return r
}
