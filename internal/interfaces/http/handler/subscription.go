package handler

import (
	"github.com/gin-gonic/gin"
	billingapp "github.com/meterly/backend/internal/application/billing"
)

// SubscriptionHandler handles subscription HTTP requests
type SubscriptionHandler struct {
	BaseHandler
	subscriptionService SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Me godoc
//
//	@ID				getMySubscription
//	@Summary		Get the caller's subscription
//	@Tags			subscriptions
//	@Produce		json
//	@Success		200	{object}	APIResponse[billingapp.SubscriptionResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse	"No subscription"
//	@Security		BearerAuth
//	@Router			/subscriptions/me [get]
func (h *SubscriptionHandler) Me(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sub)
}

// GetByID godoc
//
//	@ID				getSubscription
//	@Summary		Get a subscription
//	@Tags			subscriptions
//	@Produce		json
//	@Param			id	path		string	true	"Subscription ID"	format(uuid)
//	@Success		200	{object}	APIResponse[billingapp.SubscriptionResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/subscriptions/{id} [get]
func (h *SubscriptionHandler) GetByID(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	sub, err := h.subscriptionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sub)
}

// List godoc
//
//	@ID				listSubscriptions
//	@Summary		List subscriptions
//	@Tags			subscriptions
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	APIResponse[[]billingapp.SubscriptionResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	req, ok := h.BindList(c)
	if !ok {
		return
	}

	subs, total, err := h.subscriptionService.List(c.Request.Context(), toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, subs, total, req.Page, req.PageSize)
}

// Create godoc
//
//	@ID				createSubscription
//	@Summary		Assign a plan to a user
//	@Tags			subscriptions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		billingapp.CreateSubscriptionRequest	true	"User and plan"
//	@Success		201		{object}	APIResponse[billingapp.SubscriptionResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse	"User or plan not found"
//	@Failure		409		{object}	ErrorResponse	"User already subscribed"
//	@Security		BearerAuth
//	@Router			/subscriptions [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var req billingapp.CreateSubscriptionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sub, err := h.subscriptionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sub)
}

// Update godoc
//
//	@ID				updateSubscription
//	@Summary		Correct a subscription
//	@Description	Administrative correction of balance or status
//	@Tags			subscriptions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Subscription ID"	format(uuid)
//	@Param			request	body		billingapp.UpdateSubscriptionRequest	true	"Fields to change"
//	@Success		200		{object}	APIResponse[billingapp.SubscriptionResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Concurrent modification"
//	@Failure		422		{object}	ErrorResponse	"Inconsistent status"
//	@Security		BearerAuth
//	@Router			/subscriptions/{id} [put]
func (h *SubscriptionHandler) Update(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdateSubscriptionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sub, err := h.subscriptionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sub)
}

// Delete godoc
//
//	@ID				deleteSubscription
//	@Summary		Delete a subscription
//	@Tags			subscriptions
//	@Produce		json
//	@Param			id	path		string	true	"Subscription ID"	format(uuid)
//	@Success		200	{object}	APIResponse[MessageResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/subscriptions/{id} [delete]
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.subscriptionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageResponse{Message: "Subscription deleted"})
}

// Renew godoc
//
//	@ID				renewSubscription
//	@Summary		Top up a subscription
//	@Description	Adds the plan's units to the user's balance and reactivates a completed subscription
//	@Tags			subscriptions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		billingapp.RenewSubscriptionRequest	true	"User and plan"
//	@Success		200		{object}	APIResponse[billingapp.SubscriptionResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/subscriptions/renew [post]
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	var req billingapp.RenewSubscriptionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sub, err := h.subscriptionService.Renew(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sub)
}
