package billing

import "github.com/meterly/backend/internal/domain/shared"

var (
	ErrPlanNotFound         = shared.ErrNotFound.WithMessage("Plan not found")
	ErrPlanNameTaken        = shared.ErrAlreadyExists.WithMessage("A plan with this name already exists")
	ErrSubscriptionNotFound = shared.ErrNotFound.WithMessage("No active subscription found for user")
	ErrSubscriptionExists   = shared.ErrAlreadyExists.WithMessage("User already has a subscription")
	ErrInsufficientUnits    = shared.ErrInsufficientBalance.WithMessage("Insufficient units on subscription")
	ErrTransactionNotFound  = shared.ErrNotFound.WithMessage("Transaction not found")
)

// ErrPaymentGateway is returned when the payment gateway cannot be reached or rejects a call
var ErrPaymentGateway = shared.NewDomainError("PAYMENT_GATEWAY_ERROR", "Payment gateway request failed")
