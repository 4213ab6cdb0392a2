// Package webhook delivers signed status notifications to the merchant's
// NotificationURL and records every attempt on the payment's history.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/hookz"
	"go.uber.org/zap"

	"github.com/vasyakrg/tbank-test-gateway/internal/domain"
	"github.com/vasyakrg/tbank-test-gateway/internal/repository"
	"github.com/vasyakrg/tbank-test-gateway/internal/token"
)

// EventStatusChanged is the hook event carrying background dispatches.
const EventStatusChanged hookz.Key = "payment.status.changed"

// Simulated card presentment fields. The real gateway reports the charged
// card here; the emulator always presents the same successful test card,
// whatever the declared status.
const (
	cardPan     = "430000******0777"
	cardExpDate = "1228"
	cardID      = "123456"
)

// Dispatch is one pending notification.
type Dispatch struct {
	Payment *domain.Payment
	Status  domain.Status
}

// Notifier builds, signs and posts merchant notifications. Send delivers
// inline; Enqueue hands the dispatch to a hookz worker pool so the caller's
// response is never gated on merchant latency. One attempt per transition,
// no retries.
type Notifier struct {
	repo     repository.PaymentRepository
	password string
	client   *http.Client
	logger   *zap.SugaredLogger
	hooks    *hookz.Hooks[Dispatch]
}

// NewNotifier creates a Notifier with the given worker pool size and
// per-request timeout.
func NewNotifier(repo repository.PaymentRepository, password string, workers int, timeout time.Duration, logger *zap.SugaredLogger) (*Notifier, error) {
	n := &Notifier{
		repo:     repo,
		password: password,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		hooks:    hookz.New[Dispatch](hookz.WithWorkers(workers)),
	}

	_, err := n.hooks.Hook(EventStatusChanged, func(ctx context.Context, d Dispatch) error {
		return n.Send(ctx, d.Payment, d.Status)
	})
	if err != nil {
		return nil, err
	}

	return n, nil
}

// Enqueue submits a dispatch to the worker pool. Returns an error only when
// the queue is full or the notifier is closed; delivery failures are recorded
// and logged by the worker, never surfaced here.
func (n *Notifier) Enqueue(payment *domain.Payment, status domain.Status) error {
	return n.hooks.Emit(context.Background(), EventStatusChanged, Dispatch{Payment: payment, Status: status})
}

// Send performs one delivery attempt and records its outcome. Payments
// without a NotificationURL are skipped silently. The returned error is for
// the caller's log only; the payment's status is already committed.
func (n *Notifier) Send(ctx context.Context, payment *domain.Payment, status domain.Status) error {
	if payment.NotificationURL == "" {
		n.logger.Debugw("no NotificationURL, skipping webhook", "payment_id", payment.PaymentID)
		return nil
	}

	payload := n.buildPayload(payment, status)
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	n.logger.Infow("sending webhook",
		"url", payment.NotificationURL,
		"payment_id", payment.PaymentID,
		"order_id", payment.OrderID,
		"status", status,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, payment.NotificationURL, bytes.NewReader(body))
	if err != nil {
		n.record(ctx, payment.PaymentID, payload, 0, err.Error())
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.record(ctx, payment.PaymentID, payload, 0, err.Error())
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	n.logger.Infow("webhook response",
		"payment_id", payment.PaymentID,
		"status_code", resp.StatusCode,
		"body", string(respBody),
	)
	n.record(ctx, payment.PaymentID, payload, resp.StatusCode, string(respBody))
	return nil
}

// Close drains the worker pool. Pending dispatches complete before it returns.
func (n *Notifier) Close() error {
	return n.hooks.Close()
}

// buildPayload assembles the signed notification body the merchant receives.
func (n *Notifier) buildPayload(payment *domain.Payment, status domain.Status) map[string]any {
	payload := map[string]any{
		"TerminalKey": payment.TerminalKey,
		"OrderId":     payment.OrderID,
		"Success":     status == domain.StatusConfirmed,
		"Status":      string(status),
		"PaymentId":   strconv.FormatInt(payment.PaymentID, 10),
		"ErrorCode":   "0",
		"Amount":      payment.Amount,
		"Pan":         cardPan,
		"ExpDate":     cardExpDate,
		"CardId":      cardID,
	}
	payload[token.Field] = token.Sign(payload, n.password)
	return payload
}

func (n *Notifier) record(ctx context.Context, paymentID int64, payload map[string]any, status int, body string) {
	attempt := domain.WebhookAttempt{
		ID:             uuid.NewString(),
		PaymentID:      paymentID,
		Payload:        payload,
		ResponseStatus: status,
		ResponseBody:   body,
		SentAt:         time.Now(),
	}
	if err := n.repo.AppendWebhookAttempt(ctx, paymentID, attempt); err != nil {
		n.logger.Errorw("failed to record webhook attempt", "payment_id", paymentID, "error", err)
	}
}
