package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	billingapp "github.com/meterly/backend/internal/application/billing"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/meterly/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupPlanRouter() (*MockPlanService, http.Handler) {
	svc := new(MockPlanService)
	h := NewPlanHandler(svc)

	r := newTestRouter(asUser(identity.RoleAdmin, uuid.New()))
	r.POST("/plans", h.Create)
	r.GET("/plans", h.List)
	r.GET("/plans/:id", h.GetByID)
	r.PUT("/plans/:id", h.Update)
	r.DELETE("/plans/:id", h.Delete)
	return svc, r
}

func samplePlan() *billingapp.PlanResponse {
	return &billingapp.PlanResponse{
		ID:       uuid.New(),
		Name:     "Starter",
		Price:    decimal.NewFromInt(5000),
		Currency: "NGN",
		Units:    1000,
	}
}

func TestPlanHandler_Create(t *testing.T) {
	t.Run("creates plan", func(t *testing.T) {
		svc, r := setupPlanRouter()
		plan := samplePlan()
		svc.On("Create", mock.Anything, mock.MatchedBy(func(req billingapp.CreatePlanRequest) bool {
			return req.Name == "Starter" && req.Units == 1000 && req.Price.Equal(decimal.NewFromInt(5000))
		})).Return(plan, nil)

		w := testutil.ServeJSON(t, r, http.MethodPost, "/plans", map[string]any{
			"name":  "Starter",
			"price": "5000",
			"units": 1000,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		got := testutil.JSONResponseAs[billingapp.PlanResponse](t, w)
		assert.Equal(t, plan.ID, got.ID)
		assert.True(t, got.Price.Equal(plan.Price))
		svc.AssertExpectations(t)
	})

	t.Run("units required", func(t *testing.T) {
		svc, r := setupPlanRouter()

		w := testutil.ServeJSON(t, r, http.MethodPost, "/plans", map[string]any{"name": "Starter"})

		info := testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
		assert.NotEmpty(t, info.Details)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate name", func(t *testing.T) {
		svc, r := setupPlanRouter()
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, billing.ErrPlanNameTaken)

		w := testutil.ServeJSON(t, r, http.MethodPost, "/plans", map[string]any{"name": "Starter", "units": 10})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPlanHandler_GetByID(t *testing.T) {
	svc, r := setupPlanRouter()
	plan := samplePlan()
	missing := uuid.New()
	svc.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
	svc.On("GetByID", mock.Anything, missing).Return(nil, billing.ErrPlanNotFound)

	w := testutil.ServeJSON(t, r, http.MethodGet, "/plans/"+plan.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Starter", testutil.JSONResponseAs[billingapp.PlanResponse](t, w).Name)

	w = testutil.ServeJSON(t, r, http.MethodGet, "/plans/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Plan not found", testutil.DecodeResponse(t, w).Error.Message)
}

func TestPlanHandler_List(t *testing.T) {
	svc, r := setupPlanRouter()
	svc.On("List", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Search == "star" && f.OrderBy == "price" && f.OrderDir == "asc"
	})).Return([]billingapp.PlanResponse{*samplePlan()}, int64(1), nil)

	w := testutil.ServeJSON(t, r, http.MethodGet, "/plans?search=star&order_by=price&order_dir=asc", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	svc.AssertExpectations(t)
}

func TestPlanHandler_Update(t *testing.T) {
	svc, r := setupPlanRouter()
	plan := samplePlan()
	plan.Units = 2000
	svc.On("Update", mock.Anything, plan.ID, mock.MatchedBy(func(req billingapp.UpdatePlanRequest) bool {
		return req.Units != nil && *req.Units == 2000 && req.Name == nil
	})).Return(plan, nil)

	w := testutil.ServeJSON(t, r, http.MethodPut, "/plans/"+plan.ID.String(), map[string]any{"units": 2000})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2000), testutil.JSONResponseAs[billingapp.PlanResponse](t, w).Units)

	w = testutil.ServeJSON(t, r, http.MethodPut, "/plans/"+plan.ID.String(), map[string]any{"units": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "Update", 1)
}

func TestPlanHandler_Delete(t *testing.T) {
	svc, r := setupPlanRouter()
	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(nil)

	w := testutil.ServeJSON(t, r, http.MethodDelete, "/plans/"+id.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Plan deleted", testutil.JSONResponseAs[MessageResponse](t, w).Message)
	svc.AssertExpectations(t)
}
