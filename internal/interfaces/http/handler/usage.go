package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/meterly/backend/internal/application/billing"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/interfaces/http/middleware"
)

// UsageHandler handles usage recording and reporting HTTP requests
type UsageHandler struct {
	BaseHandler
	recorder UsageRecorder
	reporter UsageReporter
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(recorder UsageRecorder, reporter UsageReporter) *UsageHandler {
	return &UsageHandler{
		recorder: recorder,
		reporter: reporter,
	}
}

// Record godoc
//
//	@ID				recordUsage
//	@Summary		Record usage
//	@Description	Deduct units from a user's subscription balance. The subscription completes when the balance reaches zero.
//	@Tags			usage
//	@Accept			json
//	@Produce		json
//	@Param			request	body		billingapp.RecordUsageRequest	true	"Units consumed"
//	@Success		201		{object}	APIResponse[billingapp.UsageResponse]
//	@Failure		400		{object}	ErrorResponse	"Invalid input or insufficient balance"
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse	"User or subscription not found"
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/usage [post]
func (h *UsageHandler) Record(c *gin.Context) {
	var req billingapp.RecordUsageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	usage, err := h.recorder.Record(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, usage)
}

// Statistics godoc
//
//	@ID				getUsageStatistics
//	@Summary		Get usage statistics
//	@Description	Consumption snapshot for the caller. Callers with usage:read_all may pass user_id to inspect another user.
//	@Tags			usage
//	@Produce		json
//	@Param			user_id	query		string	false	"User to inspect"	format(uuid)
//	@Success		200		{object}	APIResponse[billingapp.UsageStatisticsResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse	"No subscription"
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/usage/statistics [get]
func (h *UsageHandler) Statistics(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	if raw := c.Query("user_id"); raw != "" {
		target, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid user_id format")
			return
		}
		if target != userID && !middleware.HasPermission(c, identity.PermUsageReadAll) {
			h.Forbidden(c, "Access denied: insufficient permissions")
			return
		}
		userID = target
	}

	stats, err := h.reporter.Statistics(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// List godoc
//
//	@ID				listUsage
//	@Summary		List usage
//	@Description	Paginated usage ledger across all users, newest first
//	@Tags			usage
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	APIResponse[[]billingapp.UsageResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/usage [get]
func (h *UsageHandler) List(c *gin.Context) {
	req, ok := h.BindList(c)
	if !ok {
		return
	}

	items, total, err := h.reporter.List(c.Request.Context(), toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// ListForUser godoc
//
//	@ID				listUserUsage
//	@Summary		List a user's usage
//	@Description	Paginated usage ledger for one user, newest first. Users may read their own ledger.
//	@Tags			usage
//	@Produce		json
//	@Param			id			path		string	true	"User ID"	format(uuid)
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	APIResponse[[]billingapp.UsageResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/users/{id}/usage [get]
func (h *UsageHandler) ListForUser(c *gin.Context) {
	userID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	req, ok := h.BindList(c)
	if !ok {
		return
	}

	items, total, err := h.reporter.ListForUser(c.Request.Context(), userID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}
