package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vasyakrg/tbank-test-gateway/internal/domain"
	"github.com/vasyakrg/tbank-test-gateway/internal/service"
)

// PageHandler serves the payer-facing approval page. Unlike the /v2 API,
// failures here are plain HTTP status + text: the consumer is a browser.
type PageHandler struct {
	payments *service.PaymentService
	logger   *zap.SugaredLogger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(payments *service.PaymentService, logger *zap.SugaredLogger) *PageHandler {
	return &PageHandler{payments: payments, logger: logger}
}

// Show handles GET /payment/:paymentId — the approval form for NEW payments.
func (h *PageHandler) Show(c *gin.Context) {
	payment, ok := h.loadPending(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "payment.html", gin.H{
		"PaymentID":   payment.PaymentID,
		"OrderID":     payment.OrderID,
		"Amount":      payment.Amount,
		"Description": payment.Description,
	})
}

// Complete handles POST /payment/:paymentId/complete. The form's action field
// decides the outcome: approve confirms the payment and redirects to
// SuccessURL, reject declines it and redirects to FailURL.
func (h *PageHandler) Complete(c *gin.Context) {
	payment, ok := h.loadPending(c)
	if !ok {
		return
	}

	switch c.PostForm("action") {
	case "approve":
		confirmed, err := h.payments.Confirm(c.Request.Context(), payment.PaymentID)
		if err != nil {
			h.respondTransitionError(c, err)
			return
		}
		h.logger.Infow("payment approved", "payment_id", confirmed.PaymentID, "order_id", confirmed.OrderID)
		c.Redirect(http.StatusFound, confirmed.SuccessURL)

	case "reject":
		rejected, err := h.payments.Reject(c.Request.Context(), payment.PaymentID)
		if err != nil {
			h.respondTransitionError(c, err)
			return
		}
		h.logger.Infow("payment rejected", "payment_id", rejected.PaymentID, "order_id", rejected.OrderID)
		c.Redirect(http.StatusFound, rejected.FailURL)

	default:
		c.String(http.StatusBadRequest, "Invalid action")
	}
}

// loadPending resolves the path parameter and enforces that the payment is
// still awaiting the payer's decision.
func (h *PageHandler) loadPending(c *gin.Context) (*domain.Payment, bool) {
	id, err := strconv.ParseInt(c.Param("paymentId"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "Payment not found")
		return nil, false
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		c.String(http.StatusNotFound, "Payment not found")
		return nil, false
	}

	if payment.Status != domain.StatusNew {
		c.String(http.StatusBadRequest, "Payment already processed (status: %s)", payment.Status)
		return nil, false
	}

	return payment, true
}

// respondTransitionError handles the race where the payment was processed
// between the status check and the transition.
func (h *PageHandler) respondTransitionError(c *gin.Context, err error) {
	var invalid *service.InvalidTransitionError
	if errors.As(err, &invalid) {
		c.String(http.StatusBadRequest, "Payment already processed (status: %s)", invalid.Current)
		return
	}
	c.String(http.StatusNotFound, "Payment not found")
}
