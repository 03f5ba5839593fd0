package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/openlaunch/open-launch/app/dto"
	businessflow "github.com/openlaunch/open-launch/business_flow"
)

// PaymentHandlerInterface defines the contract for payment handlers
type PaymentHandlerInterface interface {
	VerifyPayment(c fiber.Ctx) error
}

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	baseHandler
	paymentFlow businessflow.PaymentFlow
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentFlow businessflow.PaymentFlow) *PaymentHandler {
	return &PaymentHandler{
		baseHandler: newBaseHandler(),
		paymentFlow: paymentFlow,
	}
}

// VerifyPayment reports the state of a checkout session
// @Summary Verify checkout session
// @Description Look up a checkout session and the project it paid for. Read-only.
// @Tags Payments
// @Produce json
// @Param session_id query string true "Checkout session id"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentVerifyResponse} "Session state"
// @Failure 400 {object} dto.APIResponse "Missing session id or payments disabled"
// @Failure 404 {object} dto.APIResponse "Unknown session or project"
// @Failure 500 {object} dto.APIResponse "Provider error"
// @Router /api/v1/payment/verify [get]
func (h *PaymentHandler) VerifyPayment(c fiber.Ctx) error {
	var req dto.PaymentVerifyRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.paymentFlow.VerifyCheckoutSession(ctx, &req)
	if err != nil {
		switch {
		case businessflow.IsPaymentsDisabled(err):
			return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{
				Success: false,
				Message: "Payments are not configured",
				Data:    result,
				Error:   dto.ErrorDetail{Code: "PAYMENTS_DISABLED"},
			})
		case businessflow.IsSessionIDRequired(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "session_id is required", "SESSION_ID_REQUIRED", nil)
		case businessflow.IsCheckoutSessionNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Checkout session not found", "SESSION_NOT_FOUND", nil)
		case businessflow.IsProjectReferenceMissing(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Session is not linked to a project", "PROJECT_REFERENCE_MISSING", nil)
		case businessflow.IsProjectNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", "PROJECT_NOT_FOUND", nil)
		}
		log.Printf("payment verification failed session=%s: %v", req.SessionID, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to verify payment", "PAYMENT_VERIFY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Payment status retrieved", result)
}
