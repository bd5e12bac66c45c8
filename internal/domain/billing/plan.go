package billing

import (
	"strings"
	"unicode/utf8"

	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/domain/shared/valueobject"
)

const maxPlanNameLength = 100

// Plan is a purchasable bundle of units
type Plan struct {
	shared.BaseEntity
	shared.SoftDeletable
	Name        string
	Description string
	Price       valueobject.Money
	Units       int64
}

// NewPlan creates a new plan with validation
func NewPlan(name, description string, price valueobject.Money, units int64) (*Plan, error) {
	p := &Plan{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Price:       price,
		Units:       units,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// PlanUpdate carries the optional fields of a plan update
type PlanUpdate struct {
	Name        *string
	Description *string
	Price       *valueobject.Money
	Units       *int64
}

// Update applies the non-nil fields, leaving the plan untouched on validation failure
func (p *Plan) Update(u PlanUpdate) error {
	next := *p
	if u.Name != nil {
		next.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		next.Description = strings.TrimSpace(*u.Description)
	}
	if u.Price != nil {
		next.Price = *u.Price
	}
	if u.Units != nil {
		next.Units = *u.Units
	}
	if err := next.validate(); err != nil {
		return err
	}
	*p = next
	p.Touch()
	return nil
}

// Delete soft-deletes the plan
func (p *Plan) Delete() {
	p.MarkDeleted()
	p.Touch()
}

func (p *Plan) validate() error {
	if p.Name == "" {
		return shared.ErrInvalidInput.WithMessage("Plan name is required")
	}
	if utf8.RuneCountInString(p.Name) > maxPlanNameLength {
		return shared.ErrInvalidInput.WithMessage("Plan name cannot exceed 100 characters")
	}
	if p.Price.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("Plan price cannot be negative")
	}
	if p.Units <= 0 {
		return shared.ErrInvalidInput.WithMessage("Plan units must be greater than zero")
	}
	return nil
}
