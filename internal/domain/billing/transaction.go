package billing

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/domain/shared/valueobject"
)

// PaymentStatus is the state of a payment transaction
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentMethodPaystack identifies payments taken through Paystack
const PaymentMethodPaystack = "paystack"

// ReferencePrefix starts every payment reference
const ReferencePrefix = "LND"

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Transaction records a payment for a plan
type Transaction struct {
	shared.BaseEntity
	UserID          uuid.UUID
	PlanID          uuid.UUID
	Amount          valueobject.Money
	PaymentMethod   string
	Reference       string
	Status          PaymentStatus
	GatewayResponse string
	PaidAt          *time.Time
}

// NewTransaction creates a pending payment for the plan's price
func NewTransaction(userID uuid.UUID, plan *Plan, method, reference string) (*Transaction, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("User ID is required")
	}
	if plan == nil || plan.IsDeleted {
		return nil, ErrPlanNotFound
	}
	if !strings.HasPrefix(reference, ReferencePrefix) {
		return nil, shared.ErrInvalidInput.WithMessage("Invalid payment reference")
	}
	return &Transaction{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        userID,
		PlanID:        plan.ID,
		Amount:        plan.Price,
		PaymentMethod: method,
		Reference:     reference,
		Status:        PaymentStatusPending,
	}, nil
}

// GenerateReference returns a new payment reference such as LND7Q2M0XK3ZP1AB
func GenerateReference() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	var sb strings.Builder
	sb.WriteString(ReferencePrefix)
	for _, c := range b {
		sb.WriteByte(referenceAlphabet[int(c)%len(referenceAlphabet)])
	}
	return sb.String()
}

// IsTerminal reports whether the transaction has been settled either way
func (t *Transaction) IsTerminal() bool {
	return t.Status == PaymentStatusSuccess || t.Status == PaymentStatusFailed
}

// Matches reports whether a gateway-confirmed amount equals what was charged
func (t *Transaction) Matches(paid valueobject.Money) bool {
	return t.Amount.Equals(paid)
}

// MarkSuccess settles a pending transaction as paid
func (t *Transaction) MarkSuccess(gatewayResponse string, paidAt time.Time) error {
	if t.Status != PaymentStatusPending {
		return shared.ErrInvalidState.WithMessage("Only pending transactions can succeed")
	}
	t.Status = PaymentStatusSuccess
	t.GatewayResponse = gatewayResponse
	t.PaidAt = &paidAt
	t.Touch()
	return nil
}

// MarkFailed settles a pending transaction as failed
func (t *Transaction) MarkFailed(gatewayResponse string) error {
	if t.Status != PaymentStatusPending {
		return shared.ErrInvalidState.WithMessage("Only pending transactions can fail")
	}
	t.Status = PaymentStatusFailed
	t.GatewayResponse = gatewayResponse
	t.Touch()
	return nil
}
