package handler

import (
	"github.com/gin-gonic/gin"
	billingapp "github.com/meterly/backend/internal/application/billing"
)

// PlanHandler handles plan catalogue HTTP requests
type PlanHandler struct {
	BaseHandler
	planService PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planService PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// Create godoc
//
//	@ID				createPlan
//	@Summary		Create a plan
//	@Tags			plans
//	@Accept			json
//	@Produce		json
//	@Param			request	body		billingapp.CreatePlanRequest	true	"Plan"
//	@Success		201		{object}	APIResponse[billingapp.PlanResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Name already in use"
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	var req billingapp.CreatePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, plan)
}

// GetByID godoc
//
//	@ID				getPlan
//	@Summary		Get a plan
//	@Tags			plans
//	@Produce		json
//	@Param			id	path		string	true	"Plan ID"	format(uuid)
//	@Success		200	{object}	APIResponse[billingapp.PlanResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/plans/{id} [get]
func (h *PlanHandler) GetByID(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	plan, err := h.planService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// List godoc
//
//	@ID				listPlans
//	@Summary		List plans
//	@Tags			plans
//	@Produce		json
//	@Param			search		query		string	false	"Name contains"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Param			order_by	query		string	false	"Sort field"	Enums(name, price, units, created_at)
//	@Param			order_dir	query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success		200			{object}	APIResponse[[]billingapp.PlanResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	req, ok := h.BindList(c)
	if !ok {
		return
	}

	plans, total, err := h.planService.List(c.Request.Context(), toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, plans, total, req.Page, req.PageSize)
}

// Update godoc
//
//	@ID				updatePlan
//	@Summary		Update a plan
//	@Tags			plans
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Plan ID"	format(uuid)
//	@Param			request	body		billingapp.UpdatePlanRequest	true	"Fields to change"
//	@Success		200		{object}	APIResponse[billingapp.PlanResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/plans/{id} [put]
func (h *PlanHandler) Update(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdatePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// Delete godoc
//
//	@ID				deletePlan
//	@Summary		Delete a plan
//	@Description	Soft-deletes the plan. Existing subscriptions keep their balance.
//	@Tags			plans
//	@Produce		json
//	@Param			id	path		string	true	"Plan ID"	format(uuid)
//	@Success		200	{object}	APIResponse[MessageResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/plans/{id} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.planService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageResponse{Message: "Plan deleted"})
}
