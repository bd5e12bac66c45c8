package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPlanService_Create(t *testing.T) {
	repo := new(MockPlanRepository)
	svc := NewPlanService(repo, zap.NewNop())

	repo.On("ExistsByName", mock.Anything, "Starter", (*uuid.UUID)(nil)).Return(false, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(p *billing.Plan) bool {
		return p.Name == "Starter" && p.Units == 100
	})).Return(nil)

	resp, err := svc.Create(context.Background(), CreatePlanRequest{
		Name:  " Starter ",
		Price: decimal.RequireFromString("1500.50"),
		Units: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, "Starter", resp.Name)
	assert.Equal(t, "NGN", resp.Currency)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(resp.Price))
	repo.AssertExpectations(t)
}

func TestPlanService_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  CreatePlanRequest
	}{
		{"missing name", CreatePlanRequest{Units: 10}},
		{"zero units", CreatePlanRequest{Name: "A"}},
		{"negative price", CreatePlanRequest{Name: "A", Units: 10, Price: decimal.NewFromInt(-1)}},
		{"bad currency", CreatePlanRequest{Name: "A", Units: 10, Currency: "XYZ"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPlanRepository)
			repo.On("ExistsByName", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Maybe()

			_, err := NewPlanService(repo, zap.NewNop()).Create(context.Background(), tt.req)

			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestPlanService_Create_DuplicateName(t *testing.T) {
	repo := new(MockPlanRepository)
	repo.On("ExistsByName", mock.Anything, "Starter", (*uuid.UUID)(nil)).Return(true, nil)

	_, err := NewPlanService(repo, zap.NewNop()).Create(context.Background(), CreatePlanRequest{Name: "Starter", Units: 10})

	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPlanService_Update(t *testing.T) {
	repo := new(MockPlanRepository)
	plan := newTestPlan(t, 100)
	repo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
	repo.On("ExistsByName", mock.Anything, "Premium", &plan.ID).Return(false, nil)
	repo.On("Save", mock.Anything, plan).Return(nil)

	name := "Premium"
	units := int64(250)
	price := decimal.NewFromInt(4000)
	resp, err := NewPlanService(repo, zap.NewNop()).Update(context.Background(), plan.ID, UpdatePlanRequest{
		Name:  &name,
		Units: &units,
		Price: &price,
	})

	require.NoError(t, err)
	assert.Equal(t, "Premium", resp.Name)
	assert.Equal(t, int64(250), resp.Units)
	assert.True(t, price.Equal(resp.Price))
	repo.AssertExpectations(t)
}

func TestPlanService_Update_InvalidLeavesPlanUntouched(t *testing.T) {
	repo := new(MockPlanRepository)
	plan := newTestPlan(t, 100)
	repo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)

	price := decimal.NewFromInt(-10)
	_, err := NewPlanService(repo, zap.NewNop()).Update(context.Background(), plan.ID, UpdatePlanRequest{Price: &price})

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.True(t, decimal.NewFromInt(2500).Equal(plan.Price.Amount()))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPlanService_Delete(t *testing.T) {
	repo := new(MockPlanRepository)
	plan := newTestPlan(t, 100)
	repo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(p *billing.Plan) bool { return p.IsDeleted })).Return(nil)

	require.NoError(t, NewPlanService(repo, zap.NewNop()).Delete(context.Background(), plan.ID))
	repo.AssertExpectations(t)
}

func TestPlanService_List(t *testing.T) {
	repo := new(MockPlanRepository)
	plan := newTestPlan(t, 100)
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.PageSize == shared.MaxPageSize
	})).Return([]billing.Plan{*plan}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	filter := shared.Filter{Page: 1, PageSize: 500}
	items, total, err := NewPlanService(repo, zap.NewNop()).List(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, plan.ID, items[0].ID)
}
