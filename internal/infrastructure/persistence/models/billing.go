package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PlanModel is the persistence model for billing.Plan.
type PlanModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_plans_name_live,where:is_deleted = false"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'NGN'"`
	Units       int64           `gorm:"not null"`
	IsDeleted   bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (PlanModel) TableName() string {
	return "plans"
}

// ToDomain converts the persistence model to a domain Plan.
func (m *PlanModel) ToDomain() *billing.Plan {
	currency, err := valueobject.ParseCurrency(m.Currency)
	if err != nil {
		currency = valueobject.DefaultCurrency
	}
	price, _ := valueobject.NewMoney(m.Price, currency)
	return &billing.Plan{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: shared.SoftDeletable{IsDeleted: m.IsDeleted},
		Name:          m.Name,
		Description:   m.Description,
		Price:         price,
		Units:         m.Units,
	}
}

// PlanModelFromDomain creates a persistence model from a domain Plan.
func PlanModelFromDomain(p *billing.Plan) *PlanModel {
	m := &PlanModel{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Amount(),
		Currency:    string(p.Price.Currency()),
		Units:       p.Units,
		IsDeleted:   p.IsDeleted,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// SubscriptionModel is the persistence model for billing.Subscription.
// A partial unique index keeps one non-deleted row per user.
type SubscriptionModel struct {
	AggregateModel
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_user_live,where:is_deleted = false"`
	PlanID     uuid.UUID `gorm:"type:uuid;not null;index"`
	TotalUnits int64     `gorm:"not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'active'"`
	IsDeleted  bool      `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription.
func (m *SubscriptionModel) ToDomain() *billing.Subscription {
	return &billing.Subscription{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		SoftDeletable:     shared.SoftDeletable{IsDeleted: m.IsDeleted},
		UserID:            m.UserID,
		PlanID:            m.PlanID,
		TotalUnits:        m.TotalUnits,
		Status:            billing.SubscriptionStatus(m.Status),
	}
}

// SubscriptionModelFromDomain creates a persistence model from a domain Subscription.
func SubscriptionModelFromDomain(s *billing.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{
		UserID:     s.UserID,
		PlanID:     s.PlanID,
		TotalUnits: s.TotalUnits,
		Status:     s.Status.String(),
		IsDeleted:  s.IsDeleted,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// UsageModel is the persistence model for the append-only usage ledger.
type UsageModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_usage_user_created,priority:1"`
	SubscriptionID uuid.UUID `gorm:"type:uuid;not null;index"`
	UnitsUsed      int64     `gorm:"not null"`
	TotalUnits     int64     `gorm:"not null"`
	RemainingUnits int64     `gorm:"not null"`
	Status         string    `gorm:"type:varchar(20);not null"`
	CreatedAt      time.Time `gorm:"not null;index:idx_usage_user_created,priority:2"`
}

// TableName returns the table name for GORM
func (UsageModel) TableName() string {
	return "usage"
}

// ToDomain converts the persistence model to a domain Usage.
func (m *UsageModel) ToDomain() *billing.Usage {
	return &billing.Usage{
		ID:             m.ID,
		UserID:         m.UserID,
		SubscriptionID: m.SubscriptionID,
		UnitsUsed:      m.UnitsUsed,
		TotalUnits:     m.TotalUnits,
		RemainingUnits: m.RemainingUnits,
		Status:         billing.SubscriptionStatus(m.Status),
		CreatedAt:      m.CreatedAt,
	}
}

// UsageModelFromDomain creates a persistence model from a domain Usage.
func UsageModelFromDomain(u *billing.Usage) *UsageModel {
	return &UsageModel{
		ID:             u.ID,
		UserID:         u.UserID,
		SubscriptionID: u.SubscriptionID,
		UnitsUsed:      u.UnitsUsed,
		TotalUnits:     u.TotalUnits,
		RemainingUnits: u.RemainingUnits,
		Status:         u.Status.String(),
		CreatedAt:      u.CreatedAt,
	}
}

// TransactionModel is the persistence model for billing.Transaction.
type TransactionModel struct {
	BaseModel
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PlanID          uuid.UUID       `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	PaymentMethod   string          `gorm:"type:varchar(30);not null"`
	Reference       string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending'"`
	GatewayResponse string          `gorm:"type:text"`
	PaidAt          *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *billing.Transaction {
	currency, err := valueobject.ParseCurrency(m.Currency)
	if err != nil {
		currency = valueobject.DefaultCurrency
	}
	amount, _ := valueobject.NewMoney(m.Amount, currency)
	return &billing.Transaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		UserID:          m.UserID,
		PlanID:          m.PlanID,
		Amount:          amount,
		PaymentMethod:   m.PaymentMethod,
		Reference:       m.Reference,
		Status:          billing.PaymentStatus(m.Status),
		GatewayResponse: m.GatewayResponse,
		PaidAt:          m.PaidAt,
	}
}

// TransactionModelFromDomain creates a persistence model from a domain Transaction.
func TransactionModelFromDomain(t *billing.Transaction) *TransactionModel {
	m := &TransactionModel{
		UserID:          t.UserID,
		PlanID:          t.PlanID,
		Amount:          t.Amount.Amount(),
		Currency:        string(t.Amount.Currency()),
		PaymentMethod:   t.PaymentMethod,
		Reference:       t.Reference,
		Status:          string(t.Status),
		GatewayResponse: t.GatewayResponse,
		PaidAt:          t.PaidAt,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
