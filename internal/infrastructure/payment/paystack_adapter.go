package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a gateway response is read
const maxResponseBytes = 1 << 20

// PaystackAdapter implements billing.PaymentGateway against the Paystack REST API
type PaystackAdapter struct {
	config     *PaystackConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPaystackAdapter creates a new Paystack adapter
func NewPaystackAdapter(config *PaystackConfig, logger *zap.Logger) (*PaystackAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PaystackAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// Initialize opens a Paystack checkout. Amounts are sent in subunits (kobo for NGN).
func (a *PaystackAdapter) Initialize(ctx context.Context, req billing.CheckoutRequest) (*billing.Checkout, error) {
	body := paystackInitializeRequest{
		Email:       req.Email,
		Amount:      req.Amount.MinorUnits(),
		Currency:    string(req.Amount.Currency()),
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
	}

	var data paystackInitializeData
	if _, err := a.do(ctx, http.MethodPost, paystackInitializePath, body, &data); err != nil {
		a.logger.Error("Paystack initialize failed",
			zap.String("reference", req.Reference),
			zap.Error(err))
		return nil, billing.ErrPaymentGateway.WithMessage("Could not start checkout with Paystack")
	}

	a.logger.Debug("Paystack checkout opened",
		zap.String("reference", data.Reference),
		zap.Int64("amount_minor", body.Amount))

	reference := data.Reference
	if reference == "" {
		reference = req.Reference
	}
	return &billing.Checkout{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        reference,
	}, nil
}

// Verify fetches the state of a reference from Paystack
func (a *PaystackAdapter) Verify(ctx context.Context, reference string) (*billing.Verification, error) {
	var data paystackVerifyData
	raw, err := a.do(ctx, http.MethodGet, fmt.Sprintf(paystackVerifyPath, url.PathEscape(reference)), nil, &data)
	if err != nil {
		a.logger.Error("Paystack verify failed",
			zap.String("reference", reference),
			zap.Error(err))
		return nil, billing.ErrPaymentGateway.WithMessage("Could not verify payment with Paystack")
	}

	currency, err := valueobject.ParseCurrency(data.Currency)
	if err != nil {
		return nil, billing.ErrPaymentGateway.WithMessage("Paystack returned an unsupported currency")
	}
	amount, err := valueobject.NewMoneyFromMinorUnits(data.Amount, currency)
	if err != nil {
		return nil, billing.ErrPaymentGateway.WithMessage("Paystack returned an invalid amount")
	}

	verification := &billing.Verification{
		Reference: data.Reference,
		Status:    mapPaystackStatus(data.Status),
		Amount:    amount,
		Raw:       string(raw),
	}
	if data.PaidAt != nil {
		if paidAt, err := time.Parse(time.RFC3339, *data.PaidAt); err == nil {
			verification.PaidAt = &paidAt
		}
	}

	a.logger.Debug("Paystack verification",
		zap.String("reference", reference),
		zap.String("status", data.Status),
		zap.String("gateway_response", data.GatewayResponse))
	return verification, nil
}

// do sends an authenticated request and decodes the envelope's data into out.
// It returns the raw data payload.
func (a *PaystackAdapter) do(ctx context.Context, method, path string, in, out any) (json.RawMessage, error) {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.SecretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || !envelope.Status {
		return nil, fmt.Errorf("paystack error (HTTP %d): %s", resp.StatusCode, envelope.Message)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return nil, fmt.Errorf("failed to parse response data: %w", err)
	}
	return envelope.Data, nil
}

func mapPaystackStatus(status string) billing.GatewayStatus {
	switch status {
	case "success":
		return billing.GatewayStatusSuccess
	case "failed", "reversed":
		return billing.GatewayStatusFailed
	case "abandoned":
		return billing.GatewayStatusAbandoned
	default:
		return billing.GatewayStatusPending
	}
}

var _ billing.PaymentGateway = (*PaystackAdapter)(nil)
