package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/logger"
	"github.com/meterly/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SubscriptionService manages user balances outside of metering: assignment,
// correction, deletion and explicit renewal.
type SubscriptionService struct {
	subRepo  billing.SubscriptionRepository
	planRepo billing.PlanRepository
	userRepo identity.UserRepository
	metrics  *telemetry.UsageMetrics
	logger   *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	subRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:  subRepo,
		planRepo: planRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// SetMetrics attaches usage metrics. A nil value disables them.
func (s *SubscriptionService) SetMetrics(m *telemetry.UsageMetrics) {
	s.metrics = m
}

// Create gives a user without a subscription the plan's allotment
func (s *SubscriptionService) Create(ctx context.Context, req CreateSubscriptionRequest) (*SubscriptionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, req.UserID); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	if _, err := s.subRepo.FindCurrentByUser(ctx, req.UserID); err == nil {
		return nil, billing.ErrSubscriptionExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	sub, err := billing.NewSubscription(req.UserID, plan)
	if err != nil {
		return nil, err
	}
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Subscription created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("user_id", sub.UserID.String()),
		zap.String("plan_id", plan.ID.String()),
		zap.Int64("total_units", sub.TotalUnits),
	)
	resp := ToSubscriptionResponse(sub, 0)
	return &resp, nil
}

// GetCurrent returns the user's subscription with the units used so far
func (s *SubscriptionService) GetCurrent(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.subRepo.FindCurrentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, sub)
}

// GetByID returns a subscription with the units used so far
func (s *SubscriptionService) GetByID(ctx context.Context, id uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, sub)
}

// List returns a page of subscriptions
func (s *SubscriptionService) List(ctx context.Context, filter shared.Filter) ([]SubscriptionResponse, int64, error) {
	filter = filter.Normalize()
	subs, err := s.subRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.subRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		resp, err := s.toResponse(ctx, &subs[i])
		if err != nil {
			return nil, 0, err
		}
		items[i] = *resp
	}
	return items, total, nil
}

// Update applies an administrative correction to the balance and/or status
func (s *SubscriptionService) Update(ctx context.Context, id uuid.UUID, req UpdateSubscriptionRequest) (*SubscriptionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var status *billing.SubscriptionStatus
	if req.Status != nil {
		st := billing.SubscriptionStatus(*req.Status)
		status = &st
	}
	if err := sub.Correct(req.TotalUnits, status); err != nil {
		return nil, err
	}
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Subscription corrected",
		zap.String("subscription_id", sub.ID.String()),
		zap.Int64("total_units", sub.TotalUnits),
		zap.String("status", sub.Status.String()),
	)
	return s.toResponse(ctx, sub)
}

// Delete soft-deletes a subscription so the user can be given a new one
func (s *SubscriptionService) Delete(ctx context.Context, id uuid.UUID) error {
	sub, err := s.subRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	sub.Delete()
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return err
	}
	logger.WithLogger(ctx, s.logger).Info("Subscription deleted",
		zap.String("subscription_id", sub.ID.String()),
	)
	return nil
}

// Renew tops the user's subscription up with the plan's units. A completed
// subscription becomes active again.
func (s *SubscriptionService) Renew(ctx context.Context, req RenewSubscriptionRequest) (*SubscriptionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "subscription", "renew",
		attribute.String(telemetry.SpanAttrUserID, req.UserID.String()),
		attribute.String(telemetry.SpanAttrPlanID, req.PlanID.String()),
	)
	defer span.End()

	sub, err := s.renew(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordRenewal(ctx)
	logger.WithLogger(ctx, s.logger).Info("Subscription renewed",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("plan_id", sub.PlanID.String()),
		zap.Int64("total_units", sub.TotalUnits),
		zap.String("status", sub.Status.String()),
	)
	return s.toResponse(ctx, sub)
}

func (s *SubscriptionService) renew(ctx context.Context, req RenewSubscriptionRequest) (*billing.Subscription, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	sub, err := s.subRepo.FindCurrentByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := sub.Renew(plan); err != nil {
		return nil, err
	}
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) ensureUser(ctx context.Context, userID uuid.UUID) error {
	exists, err := s.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return identity.ErrUserNotFound
	}
	return nil
}

func (s *SubscriptionService) toResponse(ctx context.Context, sub *billing.Subscription) (*SubscriptionResponse, error) {
	used, err := s.subRepo.UsedUnits(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	resp := ToSubscriptionResponse(sub, used)
	return &resp, nil
}
