package billing

import (
	"context"
	"time"

	"github.com/meterly/backend/internal/domain/shared/valueobject"
)

// CheckoutRequest asks the gateway to open a hosted checkout
type CheckoutRequest struct {
	Email       string
	Amount      valueobject.Money
	Reference   string
	CallbackURL string
}

// Checkout is the gateway's answer to a CheckoutRequest
type Checkout struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// GatewayStatus is the gateway-reported outcome of a charge
type GatewayStatus string

const (
	GatewayStatusSuccess   GatewayStatus = "success"
	GatewayStatusFailed    GatewayStatus = "failed"
	GatewayStatusAbandoned GatewayStatus = "abandoned"
	GatewayStatusPending   GatewayStatus = "pending"
)

// IsFinal reports whether the gateway will not change the status again
func (s GatewayStatus) IsFinal() bool {
	return s == GatewayStatusSuccess || s == GatewayStatusFailed || s == GatewayStatusAbandoned
}

// Verification is what the gateway confirms about a reference
type Verification struct {
	Reference string
	Status    GatewayStatus
	Amount    valueobject.Money
	PaidAt    *time.Time
	// Raw is the gateway payload kept on the transaction for audit
	Raw string
}

// PaymentGateway is the port to an external card payment provider
type PaymentGateway interface {
	// Initialize opens a checkout for the amount and returns where to send the buyer
	Initialize(ctx context.Context, req CheckoutRequest) (*Checkout, error)

	// Verify asks the gateway for the state of a reference
	Verify(ctx context.Context, reference string) (*Verification, error)
}
