package billing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// PlanService manages the catalogue of unit bundles
type PlanService struct {
	planRepo billing.PlanRepository
	logger   *zap.Logger
}

// NewPlanService creates a new PlanService
func NewPlanService(planRepo billing.PlanRepository, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		logger:   logger,
	}
}

// Create adds a plan after checking that its name is free
func (s *PlanService) Create(ctx context.Context, req CreatePlanRequest) (*PlanResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	currency, err := valueobject.ParseCurrency(req.Currency)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage("Unsupported currency")
	}
	price, err := valueobject.NewMoney(req.Price, currency)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage(err.Error())
	}

	plan, err := billing.NewPlan(req.Name, req.Description, price, req.Units)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, plan.Name, nil); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("Plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("name", plan.Name),
		zap.Int64("units", plan.Units),
	)
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// GetByID returns a plan
func (s *PlanService) GetByID(ctx context.Context, id uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// List returns a page of plans
func (s *PlanService) List(ctx context.Context, filter shared.Filter) ([]PlanResponse, int64, error) {
	filter = filter.Normalize()
	plans, err := s.planRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.planRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]PlanResponse, len(plans))
	for i := range plans {
		items[i] = ToPlanResponse(&plans[i])
	}
	return items, total, nil
}

// Update changes a plan's name, description, price or units. Existing
// subscriptions keep their balances.
func (s *PlanService) Update(ctx context.Context, id uuid.UUID, req UpdatePlanRequest) (*PlanResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update := billing.PlanUpdate{
		Name:        req.Name,
		Description: req.Description,
		Units:       req.Units,
	}
	if req.Price != nil {
		price, err := valueobject.NewMoney(*req.Price, plan.Price.Currency())
		if err != nil {
			return nil, shared.ErrInvalidInput.WithMessage(err.Error())
		}
		update.Price = &price
	}
	if req.Name != nil && !strings.EqualFold(strings.TrimSpace(*req.Name), plan.Name) {
		if err := s.ensureNameFree(ctx, *req.Name, &plan.ID); err != nil {
			return nil, err
		}
	}

	if err := plan.Update(update); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("Plan updated", zap.String("plan_id", plan.ID.String()))
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// Delete soft-deletes a plan. Subscriptions bought through it are unaffected.
func (s *PlanService) Delete(ctx context.Context, id uuid.UUID) error {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	plan.Delete()
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return err
	}
	s.logger.Info("Plan deleted", zap.String("plan_id", plan.ID.String()))
	return nil
}

func (s *PlanService) ensureNameFree(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.planRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return billing.ErrPlanNameTaken
	}
	return nil
}
