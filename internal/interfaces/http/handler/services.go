package handler

import (
	"context"

	"github.com/google/uuid"
	billingapp "github.com/meterly/backend/internal/application/billing"
	identityapp "github.com/meterly/backend/internal/application/identity"
	"github.com/meterly/backend/internal/domain/shared"
)

// UsageRecorder deducts units from a user's balance
type UsageRecorder interface {
	Record(ctx context.Context, req billingapp.RecordUsageRequest) (*billingapp.UsageResponse, error)
}

// UsageReporter answers consumption queries
type UsageReporter interface {
	Statistics(ctx context.Context, userID uuid.UUID) (*billingapp.UsageStatisticsResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]billingapp.UsageResponse, int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]billingapp.UsageResponse, int64, error)
}

// PlanService manages the plan catalogue
type PlanService interface {
	Create(ctx context.Context, req billingapp.CreatePlanRequest) (*billingapp.PlanResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*billingapp.PlanResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]billingapp.PlanResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req billingapp.UpdatePlanRequest) (*billingapp.PlanResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubscriptionService manages user balances
type SubscriptionService interface {
	Create(ctx context.Context, req billingapp.CreateSubscriptionRequest) (*billingapp.SubscriptionResponse, error)
	GetCurrent(ctx context.Context, userID uuid.UUID) (*billingapp.SubscriptionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*billingapp.SubscriptionResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]billingapp.SubscriptionResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req billingapp.UpdateSubscriptionRequest) (*billingapp.SubscriptionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Renew(ctx context.Context, req billingapp.RenewSubscriptionRequest) (*billingapp.SubscriptionResponse, error)
}

// PaymentService sells plans through the payment gateway
type PaymentService interface {
	Initiate(ctx context.Context, req billingapp.InitiatePaymentRequest) (*billingapp.InitiatePaymentResponse, error)
	HandleCallback(ctx context.Context, reference string) (*billingapp.PaymentResponse, error)
}

// AuthService issues and revokes credentials
type AuthService interface {
	Login(ctx context.Context, input identityapp.LoginInput) (*identityapp.LoginResult, error)
	Register(ctx context.Context, input identityapp.RegisterInput) (*identityapp.UserInfo, error)
	RefreshToken(ctx context.Context, input identityapp.RefreshTokenInput) (*identityapp.TokenResult, error)
	Logout(ctx context.Context, input identityapp.LogoutInput) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*identityapp.UserInfo, error)
}

var (
	_ UsageRecorder       = (*billingapp.UsageRecorder)(nil)
	_ UsageReporter       = (*billingapp.UsageReporter)(nil)
	_ PlanService         = (*billingapp.PlanService)(nil)
	_ SubscriptionService = (*billingapp.SubscriptionService)(nil)
	_ PaymentService      = (*billingapp.PaymentService)(nil)
	_ AuthService         = (*identityapp.AuthService)(nil)
)
