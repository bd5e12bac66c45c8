package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// RecordUsageRequest is the typed usage contract: which user consumed how many units
type RecordUsageRequest struct {
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	UnitsUsed int64     `json:"units_used" binding:"required,gt=0"`
}

// UsageResponse represents a usage ledger row in API responses
type UsageResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	SubscriptionID  uuid.UUID `json:"subscription_id"`
	UnitsUsed       int64     `json:"units_used"`
	TotalUnits      int64     `json:"total_units"`
	RemainingUnits  int64     `json:"remaining_units"`
	UsagePercentage float64   `json:"usage_percentage"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToUsageResponse converts a domain Usage to a response
func ToUsageResponse(u *billing.Usage) UsageResponse {
	return UsageResponse{
		ID:              u.ID,
		UserID:          u.UserID,
		SubscriptionID:  u.SubscriptionID,
		UnitsUsed:       u.UnitsUsed,
		TotalUnits:      u.TotalUnits,
		RemainingUnits:  u.RemainingUnits,
		UsagePercentage: u.UsagePercentage(),
		Status:          u.Status.String(),
		CreatedAt:       u.CreatedAt,
	}
}

// UsageStatisticsResponse is a user's consumption snapshot
type UsageStatisticsResponse struct {
	UnitsUsed       int64      `json:"units_used"`
	TotalUnits      int64      `json:"total_units"`
	RemainingUnits  int64      `json:"remaining_units"`
	UsagePercentage float64    `json:"usage_percentage"`
	Status          string     `json:"status"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty"`
}

// ToUsageStatisticsResponse converts domain statistics to a response
func ToUsageStatisticsResponse(s billing.UsageStatistics) UsageStatisticsResponse {
	return UsageStatisticsResponse{
		UnitsUsed:       s.UnitsUsed,
		TotalUnits:      s.TotalUnits,
		RemainingUnits:  s.RemainingUnits,
		UsagePercentage: s.UsagePercentage,
		Status:          s.Status.String(),
		LastUsedAt:      s.LastUsedAt,
	}
}

// CreatePlanRequest represents a request to create a plan
type CreatePlanRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
	Units       int64           `json:"units" binding:"required,gt=0"`
}

// UpdatePlanRequest represents a request to update a plan
type UpdatePlanRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	Units       *int64           `json:"units" binding:"omitempty,gt=0"`
}

// PlanResponse represents a plan in API responses
type PlanResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Units       int64           `json:"units"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToPlanResponse converts a domain Plan to a response
func ToPlanResponse(p *billing.Plan) PlanResponse {
	return PlanResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Amount(),
		Currency:    string(p.Price.Currency()),
		Units:       p.Units,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreateSubscriptionRequest assigns a plan to a user
type CreateSubscriptionRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	PlanID uuid.UUID `json:"plan_id" binding:"required"`
}

// RenewSubscriptionRequest tops a user's subscription up with a plan's units
type RenewSubscriptionRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	PlanID uuid.UUID `json:"plan_id" binding:"required"`
}

// UpdateSubscriptionRequest is an administrative balance or status correction
type UpdateSubscriptionRequest struct {
	TotalUnits *int64  `json:"total_units" binding:"omitempty,gte=0"`
	Status     *string `json:"status" binding:"omitempty,oneof=active completed"`
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	PlanID     uuid.UUID `json:"plan_id"`
	TotalUnits int64     `json:"total_units"`
	UsedUnits  int64     `json:"used_units"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int       `json:"version"`
}

// ToSubscriptionResponse converts a domain Subscription to a response
func ToSubscriptionResponse(s *billing.Subscription, usedUnits int64) SubscriptionResponse {
	return SubscriptionResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		PlanID:     s.PlanID,
		TotalUnits: s.TotalUnits,
		UsedUnits:  usedUnits,
		Status:     s.Status.String(),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		Version:    s.Version,
	}
}

// InitiatePaymentRequest starts a checkout for a plan
type InitiatePaymentRequest struct {
	PlanID      uuid.UUID `json:"-"`
	Email       string    `json:"email" binding:"required,email,max=200"`
	CallbackURL string    `json:"callback_url" binding:"omitempty,url"`
}

// InitiatePaymentResponse tells the client where to pay
type InitiatePaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// PaymentResponse reports the state of a payment after its callback
type PaymentResponse struct {
	Reference      string                `json:"reference"`
	Status         string                `json:"status"`
	Amount         decimal.Decimal       `json:"amount"`
	Currency       string                `json:"currency"`
	PlanID         uuid.UUID             `json:"plan_id"`
	UserID         uuid.UUID             `json:"user_id"`
	PaidAt         *time.Time            `json:"paid_at,omitempty"`
	Subscription   *SubscriptionResponse `json:"subscription,omitempty"`
	AlreadyHandled bool                  `json:"already_handled"`
}

// ToPaymentResponse converts a domain Transaction to a response
func ToPaymentResponse(t *billing.Transaction) PaymentResponse {
	return PaymentResponse{
		Reference: t.Reference,
		Status:    string(t.Status),
		Amount:    t.Amount.Amount(),
		Currency:  string(t.Amount.Currency()),
		PlanID:    t.PlanID,
		UserID:    t.UserID,
		PaidAt:    t.PaidAt,
	}
}
