package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/vasyakrg/tbank-test-gateway/internal/domain"
	"github.com/vasyakrg/tbank-test-gateway/internal/repository"
)

// Notifier delivers signed status notifications to the merchant.
//
// Send performs one delivery attempt and blocks until it completes; the
// returned error exists only so the caller can log it. Enqueue hands the
// dispatch to a background worker and never blocks on delivery.
type Notifier interface {
	Send(ctx context.Context, payment *domain.Payment, status domain.Status) error
	Enqueue(payment *domain.Payment, status domain.Status) error
}

// PaymentService owns the payment lifecycle: it validates transitions,
// persists them and triggers merchant notifications.
type PaymentService struct {
	repo     repository.PaymentRepository
	notifier Notifier
	logger   *zap.SugaredLogger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(repo repository.PaymentRepository, notifier Notifier, logger *zap.SugaredLogger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// InitiateRequest contains the parameters for creating a payment.
// Authentication (terminal key and token) is the caller's responsibility.
type InitiateRequest struct {
	OrderID         string
	Amount          int64
	Description     string
	TerminalKey     string
	SuccessURL      string
	FailURL         string
	NotificationURL string
	RequestPayload  map[string]any
}

// Initiate creates a new payment in status NEW.
func (s *PaymentService) Initiate(ctx context.Context, req InitiateRequest) (*domain.Payment, error) {
	payment, err := s.repo.Create(ctx, repository.CreatePayment{
		OrderID:         req.OrderID,
		Amount:          req.Amount,
		Description:     req.Description,
		TerminalKey:     req.TerminalKey,
		SuccessURL:      req.SuccessURL,
		FailURL:         req.FailURL,
		NotificationURL: req.NotificationURL,
		RequestPayload:  req.RequestPayload,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("payment created",
		"payment_id", payment.PaymentID,
		"order_id", payment.OrderID,
		"amount", payment.Amount,
	)
	return payment, nil
}

// Confirm moves a NEW payment to CONFIRMED (payer approved the charge) and
// delivers the CONFIRMED webhook before returning. Delivery failures are
// logged, never propagated: the status change has already been committed.
func (s *PaymentService) Confirm(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.transition(ctx, id, domain.StatusConfirmed, false)
}

// Reject moves a NEW payment to REJECTED (payer declined the charge) and
// delivers the REJECTED webhook before returning.
func (s *PaymentService) Reject(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.transition(ctx, id, domain.StatusRejected, false)
}

// Cancel refunds a CONFIRMED payment. The REFUNDED webhook is dispatched on
// a background worker so the merchant's API response is never gated on it.
func (s *PaymentService) Cancel(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.transition(ctx, id, domain.StatusRefunded, true)
}

// GetPayment retrieves a payment by ID without changing it.
func (s *PaymentService) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// transition applies one status change and triggers the matching webhook
// dispatch. The repository validates the transition in the same critical
// section as the write, so concurrent requests on one payment cannot both
// commit; the loser's conflict surfaces here as InvalidTransitionError.
func (s *PaymentService) transition(ctx context.Context, id int64, target domain.Status, async bool) (*domain.Payment, error) {
	updated, err := s.repo.UpdateStatus(ctx, id, target)
	if err != nil {
		var conflict *repository.StatusConflictError
		if errors.As(err, &conflict) {
			return nil, &InvalidTransitionError{
				PaymentID: conflict.PaymentID,
				Current:   conflict.Current,
				Target:    conflict.Target,
			}
		}
		return nil, err
	}

	s.logger.Infow("payment status changed",
		"payment_id", updated.PaymentID,
		"order_id", updated.OrderID,
		"status", updated.Status,
	)

	if async {
		if err := s.notifier.Enqueue(updated, target); err != nil {
			s.logger.Errorw("webhook enqueue failed",
				"payment_id", updated.PaymentID,
				"error", err,
			)
		}
	} else if err := s.notifier.Send(ctx, updated, target); err != nil {
		s.logger.Errorw("webhook delivery failed",
			"payment_id", updated.PaymentID,
			"status", target,
			"error", err,
		)
	}

	return updated, nil
}
