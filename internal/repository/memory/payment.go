// Package memory provides the in-memory implementation of
// repository.PaymentRepository. Payments live for the process lifetime only;
// the emulator deliberately has no durable storage.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vasyakrg/tbank-test-gateway/internal/domain"
	"github.com/vasyakrg/tbank-test-gateway/internal/repository"
)

// baseID seeds the identifier counter so generated IDs look like real
// gateway payment IDs rather than small integers.
const baseID = 2460000000

// PaymentRepository is an in-memory repository.PaymentRepository.
// Safe for concurrent use.
type PaymentRepository struct {
	mu         sync.RWMutex
	payments   map[int64]*domain.Payment
	order      []int64 // creation order
	webhookLog []domain.WebhookAttempt
	nextID     int64
}

// NewPaymentRepository creates an empty in-memory payment repository.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments: make(map[int64]*domain.Payment),
		nextID:   baseID,
	}
}

// Create registers a new payment in status NEW with a fresh identifier.
func (r *PaymentRepository) Create(ctx context.Context, fields repository.CreatePayment) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	payment := &domain.Payment{
		PaymentID:       r.nextID,
		OrderID:         fields.OrderID,
		Amount:          fields.Amount,
		Description:     fields.Description,
		TerminalKey:     fields.TerminalKey,
		SuccessURL:      fields.SuccessURL,
		FailURL:         fields.FailURL,
		NotificationURL: fields.NotificationURL,
		Status:          domain.StatusNew,
		RequestPayload:  fields.RequestPayload,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.nextID++

	r.payments[payment.PaymentID] = payment
	r.order = append(r.order, payment.PaymentID)

	return clonePayment(payment), nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePayment(payment), nil
}

// UpdateStatus sets the payment status and refreshes UpdatedAt. The guard
// runs under the same write lock as the mutation: whichever racing request
// acquires the lock first wins, the loser sees the winner's status in the
// conflict error.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !payment.Status.CanTransitionTo(status) {
		return nil, &repository.StatusConflictError{
			PaymentID: id,
			Current:   payment.Status,
			Target:    status,
		}
	}
	payment.Status = status
	payment.UpdatedAt = time.Now()
	return clonePayment(payment), nil
}

// AppendWebhookAttempt records a delivery attempt on the payment and on the
// global log.
func (r *PaymentRepository) AppendWebhookAttempt(ctx context.Context, id int64, attempt domain.WebhookAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Webhooks = append(payment.Webhooks, attempt)
	r.webhookLog = append(r.webhookLog, attempt)
	return nil
}

// ListAll returns every payment, most recently created first.
func (r *PaymentRepository) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Payment, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		result = append(result, clonePayment(r.payments[r.order[i]]))
	}
	return result, nil
}

// WebhookLog returns every recorded delivery attempt, most recent first.
func (r *PaymentRepository) WebhookLog(ctx context.Context) ([]domain.WebhookAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.WebhookAttempt, 0, len(r.webhookLog))
	for i := len(r.webhookLog) - 1; i >= 0; i-- {
		result = append(result, r.webhookLog[i])
	}
	return result, nil
}

// Count returns the number of payments in the store.
func (r *PaymentRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments), nil
}

// clonePayment copies a payment so callers never alias store-owned state.
func clonePayment(p *domain.Payment) *domain.Payment {
	c := *p
	if p.Webhooks != nil {
		c.Webhooks = make([]domain.WebhookAttempt, len(p.Webhooks))
		copy(c.Webhooks, p.Webhooks)
	}
	return &c
}
