package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/logger"
	"github.com/meterly/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const idempotencyKeyPrefix = "paystack:"

// PaymentServiceConfig holds payment flow settings
type PaymentServiceConfig struct {
	// CallbackURL is used when a checkout request does not name one
	CallbackURL string
	// IdempotencyTTL is how long a fulfilled reference stays claimed
	IdempotencyTTL time.Duration
}

// PaymentService sells plans through a payment gateway and fulfils paid
// transactions by creating or renewing the buyer's subscription.
type PaymentService struct {
	planRepo    billing.PlanRepository
	userRepo    identity.UserRepository
	txnRepo     billing.TransactionRepository
	gateway     billing.PaymentGateway
	idempotency shared.IdempotencyStore
	txScope     TransactionScope
	config      PaymentServiceConfig
	metrics     *telemetry.UsageMetrics
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	planRepo billing.PlanRepository,
	userRepo identity.UserRepository,
	txnRepo billing.TransactionRepository,
	gateway billing.PaymentGateway,
	idempotency shared.IdempotencyStore,
	txScope TransactionScope,
	config PaymentServiceConfig,
	logger *zap.Logger,
) *PaymentService {
	if config.IdempotencyTTL <= 0 {
		config.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	return &PaymentService{
		planRepo:    planRepo,
		userRepo:    userRepo,
		txnRepo:     txnRepo,
		gateway:     gateway,
		idempotency: idempotency,
		txScope:     txScope,
		config:      config,
		logger:      logger,
	}
}

// SetMetrics attaches usage metrics. A nil value disables them.
func (s *PaymentService) SetMetrics(m *telemetry.UsageMetrics) {
	s.metrics = m
}

// Initiate records a pending transaction for the plan and opens a gateway
// checkout. Buyers without an account get a guest user keyed by email.
func (s *PaymentService) Initiate(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "initiate",
		attribute.String(telemetry.SpanAttrPlanID, req.PlanID.String()),
	)
	defer span.End()

	resp, err := s.initiate(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String(telemetry.SpanAttrReference, resp.Reference))
	return resp, nil
}

func (s *PaymentService) initiate(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	user, err := s.findOrCreateBuyer(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	txn, err := billing.NewTransaction(user.ID, plan, billing.PaymentMethodPaystack, billing.GenerateReference())
	if err != nil {
		return nil, err
	}
	if err := s.txnRepo.Save(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = s.config.CallbackURL
	}
	checkout, err := s.gateway.Initialize(ctx, billing.CheckoutRequest{
		Email:       user.Email,
		Amount:      txn.Amount,
		Reference:   txn.Reference,
		CallbackURL: callbackURL,
	})
	if err != nil {
		s.failTransaction(ctx, txn, err.Error())
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Payment initiated",
		zap.String("reference", txn.Reference),
		zap.String("user_id", user.ID.String()),
		zap.String("plan_id", plan.ID.String()),
		zap.String("amount", txn.Amount.String()),
	)
	return &InitiatePaymentResponse{
		AuthorizationURL: checkout.AuthorizationURL,
		AccessCode:       checkout.AccessCode,
		Reference:        txn.Reference,
	}, nil
}

// HandleCallback verifies a reference with the gateway and, when the charge
// succeeded for the expected amount, marks the transaction paid and credits the
// buyer's subscription in one database transaction. A reference is fulfilled
// at most once; repeated callbacks return the stored outcome.
func (s *PaymentService) HandleCallback(ctx context.Context, reference string) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "callback",
		attribute.String(telemetry.SpanAttrReference, reference),
	)
	defer span.End()

	resp, err := s.handleCallback(ctx, reference)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !resp.AlreadyHandled {
		s.metrics.RecordPayment(ctx, resp.Status)
	}
	return resp, nil
}

func (s *PaymentService) handleCallback(ctx context.Context, reference string) (*PaymentResponse, error) {
	if reference == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Payment reference is required")
	}
	log := logger.WithLogger(ctx, s.logger).With(zap.String("reference", reference))

	txn, err := s.txnRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if txn.IsTerminal() {
		return s.handled(txn), nil
	}

	key := idempotencyKeyPrefix + reference
	claimed, err := s.idempotency.MarkProcessed(ctx, key, s.config.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to claim payment reference: %w", err)
	}
	if !claimed {
		log.Info("Payment callback already in progress")
		return s.handled(txn), nil
	}

	resp, err := s.settle(ctx, txn)
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			log.Warn("Failed to release payment reference", zap.Error(releaseErr))
		}
		return nil, err
	}
	return resp, nil
}

func (s *PaymentService) settle(ctx context.Context, txn *billing.Transaction) (*PaymentResponse, error) {
	log := logger.WithLogger(ctx, s.logger).With(zap.String("reference", txn.Reference))

	verification, err := s.gateway.Verify(ctx, txn.Reference)
	if err != nil {
		return nil, err
	}
	if !verification.Status.IsFinal() {
		return nil, shared.ErrInvalidState.WithMessage("Payment has not completed yet")
	}

	if verification.Status != billing.GatewayStatusSuccess || !txn.Matches(verification.Amount) {
		if err := txn.MarkFailed(verification.Raw); err != nil {
			return nil, err
		}
		if err := s.txnRepo.Save(ctx, txn); err != nil {
			return nil, fmt.Errorf("failed to save transaction: %w", err)
		}
		log.Warn("Payment not fulfilled",
			zap.String("gateway_status", string(verification.Status)),
			zap.String("expected", txn.Amount.String()),
			zap.String("paid", verification.Amount.String()),
		)
		resp := ToPaymentResponse(txn)
		return &resp, nil
	}

	plan, err := s.planRepo.FindByID(ctx, txn.PlanID)
	if err != nil {
		return nil, err
	}

	paidAt := time.Now()
	if verification.PaidAt != nil {
		paidAt = *verification.PaidAt
	}

	var (
		sub            *billing.Subscription
		alreadySettled bool
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.TransactionRepo().FindByReference(ctx, txn.Reference)
		if err != nil {
			return err
		}
		txn = current
		if current.IsTerminal() {
			alreadySettled = true
			return nil
		}
		if err := current.MarkSuccess(verification.Raw, paidAt); err != nil {
			return err
		}
		if err := repos.TransactionRepo().Save(ctx, current); err != nil {
			return err
		}

		sub, err = creditSubscription(ctx, repos.SubscriptionRepo(), current.UserID, plan)
		return err
	})
	if err != nil {
		return nil, err
	}
	if alreadySettled {
		return s.handled(txn), nil
	}

	log.Info("Payment fulfilled",
		zap.String("user_id", txn.UserID.String()),
		zap.String("subscription_id", sub.ID.String()),
		zap.Int64("total_units", sub.TotalUnits),
	)
	resp := ToPaymentResponse(txn)
	subResp := ToSubscriptionResponse(sub, 0)
	resp.Subscription = &subResp
	return &resp, nil
}

// creditSubscription creates the user's subscription or renews the existing one
func creditSubscription(ctx context.Context, repo billing.SubscriptionRepository, userID uuid.UUID, plan *billing.Plan) (*billing.Subscription, error) {
	sub, err := repo.FindCurrentByUser(ctx, userID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		sub, err = billing.NewSubscription(userID, plan)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := sub.Renew(plan); err != nil {
			return nil, err
		}
	}
	if err := repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *PaymentService) findOrCreateBuyer(ctx context.Context, email string) (*identity.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err = identity.NewGuestUser(email)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	logger.WithLogger(ctx, s.logger).Info("Guest user created for checkout",
		zap.String("user_id", user.ID.String()),
	)
	return user, nil
}

func (s *PaymentService) failTransaction(ctx context.Context, txn *billing.Transaction, reason string) {
	if err := txn.MarkFailed(reason); err != nil {
		return
	}
	if err := s.txnRepo.Save(ctx, txn); err != nil {
		logger.WithLogger(ctx, s.logger).Error("Failed to mark transaction failed",
			zap.String("reference", txn.Reference),
			zap.Error(err),
		)
	}
}

func (s *PaymentService) handled(txn *billing.Transaction) *PaymentResponse {
	resp := ToPaymentResponse(txn)
	resp.AlreadyHandled = true
	return &resp
}
