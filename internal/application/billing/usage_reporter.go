package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/logger"
	"github.com/meterly/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// UsageReporter answers read-only questions about consumption
type UsageReporter struct {
	subRepo   billing.SubscriptionRepository
	usageRepo billing.UsageRepository
	logger    *zap.Logger
}

// NewUsageReporter creates a new UsageReporter
func NewUsageReporter(subRepo billing.SubscriptionRepository, usageRepo billing.UsageRepository, logger *zap.Logger) *UsageReporter {
	return &UsageReporter{
		subRepo:   subRepo,
		usageRepo: usageRepo,
		logger:    logger,
	}
}

// Statistics reports the user's latest deduction against their current balance.
// A user with a subscription but no usage gets zeroed figures.
func (s *UsageReporter) Statistics(ctx context.Context, userID uuid.UUID) (*UsageStatisticsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "usage", "statistics",
		attribute.String(telemetry.SpanAttrUserID, userID.String()),
	)
	defer span.End()

	sub, err := s.subRepo.FindCurrentByUser(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	latest, err := s.usageRepo.FindLatestByUser(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if latest == nil {
		logger.WithLogger(ctx, s.logger).Debug("No usage recorded for subscription",
			zap.String("subscription_id", sub.ID.String()),
		)
	}

	resp := ToUsageStatisticsResponse(billing.NewUsageStatistics(latest, sub))
	return &resp, nil
}

// List returns a page of the whole ledger, newest first
func (s *UsageReporter) List(ctx context.Context, filter shared.Filter) ([]UsageResponse, int64, error) {
	return s.list(ctx, billing.UsageFilter{Filter: filter.Normalize()})
}

// ListForUser returns a page of one user's ledger, newest first
func (s *UsageReporter) ListForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]UsageResponse, int64, error) {
	return s.list(ctx, billing.UsageFilter{Filter: filter.Normalize(), UserID: &userID})
}

func (s *UsageReporter) list(ctx context.Context, filter billing.UsageFilter) ([]UsageResponse, int64, error) {
	rows, err := s.usageRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.usageRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]UsageResponse, len(rows))
	for i := range rows {
		items[i] = ToUsageResponse(&rows[i])
	}
	return items, total, nil
}
