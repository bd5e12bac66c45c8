package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/logger"
	"github.com/meterly/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// UsageRecorder deducts consumed units from a user's subscription and appends
// the matching ledger row.
type UsageRecorder struct {
	userRepo identity.UserRepository
	txScope  TransactionScope
	metrics  *telemetry.UsageMetrics
	logger   *zap.Logger
}

// NewUsageRecorder creates a new UsageRecorder
func NewUsageRecorder(userRepo identity.UserRepository, txScope TransactionScope, logger *zap.Logger) *UsageRecorder {
	return &UsageRecorder{
		userRepo: userRepo,
		txScope:  txScope,
		logger:   logger,
	}
}

// SetMetrics attaches usage metrics. A nil value disables them.
func (s *UsageRecorder) SetMetrics(m *telemetry.UsageMetrics) {
	s.metrics = m
}

// Record deducts req.UnitsUsed from the user's current subscription. The
// balance check, the decrement and the ledger insert commit together or not at
// all; an insufficient balance leaves every row untouched.
func (s *UsageRecorder) Record(ctx context.Context, req RecordUsageRequest) (*UsageResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "usage", "record",
		attribute.String(telemetry.SpanAttrUserID, req.UserID.String()),
		attribute.Int64(telemetry.SpanAttrUnits, req.UnitsUsed),
	)
	defer span.End()
	log := logger.WithLogger(ctx, s.logger)
	start := time.Now()

	usage, err := s.record(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordRejection(ctx, errorCode(err), time.Since(start))
		if errors.Is(err, shared.ErrInsufficientBalance) {
			log.Warn("Usage rejected: insufficient units",
				zap.String("user_id", req.UserID.String()),
				zap.Int64("units_requested", req.UnitsUsed),
			)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String(telemetry.SpanAttrSubscriptionID, usage.SubscriptionID.String()),
		attribute.Int64("remaining_units", usage.RemainingUnits),
	)
	s.metrics.RecordUsage(ctx, usage.UnitsUsed, usage.Status.String(), time.Since(start))
	log.Info("Usage recorded",
		zap.String("user_id", usage.UserID.String()),
		zap.String("subscription_id", usage.SubscriptionID.String()),
		zap.Int64("units_used", usage.UnitsUsed),
		zap.Int64("remaining_units", usage.RemainingUnits),
		zap.String("status", usage.Status.String()),
	)

	resp := ToUsageResponse(usage)
	return &resp, nil
}

func (s *UsageRecorder) record(ctx context.Context, req RecordUsageRequest) (*billing.Usage, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !exists {
		return nil, identity.ErrUserNotFound
	}

	var usage *billing.Usage
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		sub, err := repos.SubscriptionRepo().FindCurrentByUser(ctx, req.UserID)
		if err != nil {
			return err
		}

		deduction, err := repos.SubscriptionRepo().DeductUnits(ctx, sub.ID, req.UnitsUsed)
		if err != nil {
			return err
		}

		usage, err = billing.NewUsage(req.UserID, *deduction)
		if err != nil {
			return err
		}
		if err := repos.UsageRepo().Create(ctx, usage); err != nil {
			return fmt.Errorf("failed to append usage: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// errorCode labels a failure for metrics
func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}
