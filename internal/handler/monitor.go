package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vasyakrg/tbank-test-gateway/internal/domain"
	"github.com/vasyakrg/tbank-test-gateway/internal/repository"
)

// MonitorHandler serves the emulator's introspection surface: the payment
// log page, its JSON feed and the health probe.
type MonitorHandler struct {
	repo repository.PaymentRepository
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(repo repository.PaymentRepository) *MonitorHandler {
	return &MonitorHandler{repo: repo}
}

// paymentView is one payment in the /api/payments feed.
type paymentView struct {
	PaymentID       int64          `json:"paymentId"`
	OrderID         string         `json:"orderId"`
	Amount          int64          `json:"amount"`
	Description     string         `json:"description"`
	Status          string         `json:"status"`
	NotificationURL string         `json:"notificationURL"`
	RequestPayload  map[string]any `json:"requestPayload"`
	Webhooks        []webhookView  `json:"webhooks"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// webhookView is one delivery attempt in the feed.
type webhookView struct {
	PaymentID      int64          `json:"paymentId"`
	Payload        map[string]any `json:"payload"`
	ResponseStatus int            `json:"responseStatus"`
	ResponseBody   string         `json:"responseBody"`
	SentAt         time.Time      `json:"sentAt"`
}

// ListPayments handles GET /api/payments.
func (h *MonitorHandler) ListPayments(c *gin.Context) {
	payments, err := h.repo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]paymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, toPaymentView(p))
	}
	c.JSON(http.StatusOK, gin.H{"payments": views, "total": len(views)})
}

// ShowLog handles GET /log — the HTML viewer polling /api/payments.
func (h *MonitorHandler) ShowLog(c *gin.Context) {
	c.HTML(http.StatusOK, "log.html", nil)
}

// Health handles GET /health.
func (h *MonitorHandler) Health(c *gin.Context) {
	count, err := h.repo.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "payments": count})
}

func toPaymentView(p *domain.Payment) paymentView {
	webhooks := make([]webhookView, 0, len(p.Webhooks))
	for _, w := range p.Webhooks {
		webhooks = append(webhooks, webhookView{
			PaymentID:      w.PaymentID,
			Payload:        w.Payload,
			ResponseStatus: w.ResponseStatus,
			ResponseBody:   w.ResponseBody,
			SentAt:         w.SentAt,
		})
	}
	return paymentView{
		PaymentID:       p.PaymentID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Description:     p.Description,
		Status:          string(p.Status),
		NotificationURL: p.NotificationURL,
		RequestPayload:  p.RequestPayload,
		Webhooks:        webhooks,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
