package repository

import (
	"context"

	"github.com/vasyakrg/tbank-test-gateway/internal/domain"
)

// CreatePayment contains the fields needed to register a new payment.
// The repository assigns the identifier, status and timestamps itself.
type CreatePayment struct {
	OrderID         string
	Amount          int64
	Description     string
	TerminalKey     string
	SuccessURL      string
	FailURL         string
	NotificationURL string
	RequestPayload  map[string]any
}

// PaymentRepository defines the storage operations for payments and their
// webhook delivery history.
type PaymentRepository interface {
	// Create registers a new payment in status NEW and assigns a fresh,
	// strictly increasing identifier.
	Create(ctx context.Context, fields CreatePayment) (*domain.Payment, error)

	// GetByID retrieves a payment by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)

	// UpdateStatus sets the status of a payment and refreshes UpdatedAt.
	// The transition is validated against the domain transition table in
	// the same critical section as the write, so two racing requests can
	// never both commit. Returns the updated payment, ErrNotFound if the
	// payment is absent, or *StatusConflictError if the current status
	// does not allow the transition.
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Payment, error)

	// AppendWebhookAttempt records a delivery attempt on the payment's
	// history and on the global webhook log.
	AppendWebhookAttempt(ctx context.Context, id int64, attempt domain.WebhookAttempt) error

	// ListAll returns every payment, most recently created first.
	ListAll(ctx context.Context) ([]*domain.Payment, error)

	// WebhookLog returns every recorded delivery attempt, most recent first.
	WebhookLog(ctx context.Context) ([]domain.WebhookAttempt, error)

	// Count returns the number of payments in the store.
	Count(ctx context.Context) (int, error)
}
