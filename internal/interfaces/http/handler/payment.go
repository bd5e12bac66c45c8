package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	billingapp "github.com/meterly/backend/internal/application/billing"
)

// PaymentHandler handles Paystack checkout and callback requests.
// Both endpoints are public: buyers may not have an account yet.
type PaymentHandler struct {
	BaseHandler
	paymentService PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Initiate godoc
//
//	@ID				initiatePaystackPayment
//	@Summary		Start a plan checkout
//	@Description	Creates a pending transaction and returns the Paystack authorization URL
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			plan_id	path		string								true	"Plan ID"	format(uuid)
//	@Param			request	body		billingapp.InitiatePaymentRequest	true	"Buyer"
//	@Success		201		{object}	APIResponse[billingapp.InitiatePaymentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse	"Plan not found"
//	@Failure		502		{object}	ErrorResponse	"Gateway rejected the request"
//	@Router			/payments/paystack/{plan_id} [post]
func (h *PaymentHandler) Initiate(c *gin.Context) {
	planID, ok := h.PathUUID(c, "plan_id")
	if !ok {
		return
	}
	var req billingapp.InitiatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.PlanID = planID

	resp, err := h.paymentService.Initiate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Callback godoc
//
//	@ID				paystackCallback
//	@Summary		Complete a plan checkout
//	@Description	Verifies the transaction with Paystack and credits the buyer. Safe to call more than once.
//	@Tags			payments
//	@Produce		json
//	@Param			reference	query		string	true	"Transaction reference"
//	@Success		200			{object}	APIResponse[billingapp.PaymentResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse	"Unknown reference"
//	@Failure		502			{object}	ErrorResponse
//	@Router			/payments/paystack/callback [get]
func (h *PaymentHandler) Callback(c *gin.Context) {
	reference := strings.TrimSpace(c.Query("reference"))
	if reference == "" {
		// Paystack also sends trxref
		reference = strings.TrimSpace(c.Query("trxref"))
	}
	if reference == "" || len(reference) > 100 {
		h.BadRequest(c, "reference is required")
		return
	}

	resp, err := h.paymentService.HandleCallback(c.Request.Context(), reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
