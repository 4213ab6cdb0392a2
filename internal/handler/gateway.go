package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vasyakrg/tbank-test-gateway/internal/repository"
	"github.com/vasyakrg/tbank-test-gateway/internal/service"
	"github.com/vasyakrg/tbank-test-gateway/internal/token"
)

// GatewayHandler implements the merchant-facing /v2 API: Init, GetState and
// Cancel, with TBank-compatible authentication and error codes.
type GatewayHandler struct {
	payments    *service.PaymentService
	terminalKey string
	password    string
	baseURL     string
	logger      *zap.SugaredLogger
}

// NewGatewayHandler creates a new GatewayHandler.
func NewGatewayHandler(payments *service.PaymentService, terminalKey, password, baseURL string, logger *zap.SugaredLogger) *GatewayHandler {
	return &GatewayHandler{
		payments:    payments,
		terminalKey: terminalKey,
		password:    password,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// InitResponse is the success body for POST /v2/Init.
type InitResponse struct {
	Success     bool   `json:"Success"`
	ErrorCode   string `json:"ErrorCode"`
	TerminalKey string `json:"TerminalKey"`
	Status      string `json:"Status"`
	PaymentID   string `json:"PaymentId"`
	OrderID     string `json:"OrderId"`
	Amount      int64  `json:"Amount"`
	PaymentURL  string `json:"PaymentURL"`
}

// StateResponse is the success body for POST /v2/GetState.
type StateResponse struct {
	Success     bool   `json:"Success"`
	ErrorCode   string `json:"ErrorCode"`
	TerminalKey string `json:"TerminalKey"`
	Status      string `json:"Status"`
	PaymentID   string `json:"PaymentId"`
	OrderID     string `json:"OrderId"`
	Amount      int64  `json:"Amount"`
}

// CancelResponse is the success body for POST /v2/Cancel.
type CancelResponse struct {
	Success        bool   `json:"Success"`
	ErrorCode      string `json:"ErrorCode"`
	TerminalKey    string `json:"TerminalKey"`
	Status         string `json:"Status"`
	PaymentID      string `json:"PaymentId"`
	OrderID        string `json:"OrderId"`
	OriginalAmount int64  `json:"OriginalAmount"`
	Amount         int64  `json:"Amount"`
}

// authenticate runs the terminal-key and token checks shared by every /v2
// endpoint. It writes the failure response itself and reports whether the
// request may proceed.
func (h *GatewayHandler) authenticate(c *gin.Context, params map[string]any) bool {
	if stringParam(params, "TerminalKey") != h.terminalKey {
		respondAPIError(c, codeInvalidTerminalKey, "Invalid TerminalKey")
		return false
	}
	if !token.Verify(params, h.password) {
		respondAPIError(c, codeInvalidToken, "Invalid Token")
		return false
	}
	return true
}

// Init handles POST /v2/Init.
func (h *GatewayHandler) Init(c *gin.Context) {
	var params map[string]any
	if err := c.ShouldBindJSON(&params); err != nil {
		respondAPIError(c, codeInvalidToken, "Invalid request body")
		return
	}

	h.logger.Infow("Init request",
		"order_id", params["OrderId"],
		"amount", params["Amount"],
		"terminal_key", params["TerminalKey"],
	)

	if !h.authenticate(c, params) {
		return
	}

	amount, _ := params["Amount"].(float64)
	payment, err := h.payments.Initiate(c.Request.Context(), service.InitiateRequest{
		OrderID:         stringParam(params, "OrderId"),
		Amount:          int64(amount),
		Description:     stringParam(params, "Description"),
		TerminalKey:     h.terminalKey,
		SuccessURL:      stringParam(params, "SuccessURL"),
		FailURL:         stringParam(params, "FailURL"),
		NotificationURL: stringParam(params, "NotificationURL"),
		RequestPayload:  params,
	})
	if err != nil {
		// Not part of the gateway error-code set: storage failures
		// surface as a plain HTTP 500, like any other unexpected fault.
		h.logger.Errorw("payment creation failed", "order_id", params["OrderId"], "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	paymentURL := fmt.Sprintf("%s/payment/%d", h.baseURL, payment.PaymentID)
	c.JSON(http.StatusOK, InitResponse{
		Success:     true,
		ErrorCode:   codeOK,
		TerminalKey: h.terminalKey,
		Status:      string(payment.Status),
		PaymentID:   strconv.FormatInt(payment.PaymentID, 10),
		OrderID:     payment.OrderID,
		Amount:      payment.Amount,
		PaymentURL:  paymentURL,
	})
}

// GetState handles POST /v2/GetState.
func (h *GatewayHandler) GetState(c *gin.Context) {
	var params map[string]any
	if err := c.ShouldBindJSON(&params); err != nil {
		respondAPIError(c, codeInvalidToken, "Invalid request body")
		return
	}

	h.logger.Infow("GetState request", "payment_id", params["PaymentId"])

	if !h.authenticate(c, params) {
		return
	}

	id, ok := paymentIDFromParams(params)
	if !ok {
		respondAPIError(c, codeNotFound, "Payment not found")
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondAPIError(c, codeNotFound, "Payment not found")
		return
	}

	c.JSON(http.StatusOK, StateResponse{
		Success:     true,
		ErrorCode:   codeOK,
		TerminalKey: h.terminalKey,
		Status:      string(payment.Status),
		PaymentID:   strconv.FormatInt(payment.PaymentID, 10),
		OrderID:     payment.OrderID,
		Amount:      payment.Amount,
	})
}

// Cancel handles POST /v2/Cancel (refund of a confirmed payment).
func (h *GatewayHandler) Cancel(c *gin.Context) {
	var params map[string]any
	if err := c.ShouldBindJSON(&params); err != nil {
		respondAPIError(c, codeInvalidToken, "Invalid request body")
		return
	}

	h.logger.Infow("Cancel request", "payment_id", params["PaymentId"])

	if !h.authenticate(c, params) {
		return
	}

	id, ok := paymentIDFromParams(params)
	if !ok {
		respondAPIError(c, codeNotFound, "Payment not found")
		return
	}

	payment, err := h.payments.Cancel(c.Request.Context(), id)
	if err != nil {
		var invalid *service.InvalidTransitionError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respondAPIError(c, codeNotFound, "Payment not found")
		case errors.As(err, &invalid):
			respondAPIError(c, codeInvalidStatus, fmt.Sprintf("Cannot cancel payment in status %s", invalid.Current))
		default:
			h.logger.Errorw("cancel failed", "payment_id", id, "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, CancelResponse{
		Success:        true,
		ErrorCode:      codeOK,
		TerminalKey:    h.terminalKey,
		Status:         string(payment.Status),
		PaymentID:      strconv.FormatInt(payment.PaymentID, 10),
		OrderID:        payment.OrderID,
		OriginalAmount: payment.Amount,
		Amount:         payment.Amount,
	})
}
