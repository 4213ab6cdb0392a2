package repository

import (
	"errors"
	"fmt"

	"github.com/vasyakrg/tbank-test-gateway/internal/domain"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")
)

// StatusConflictError is returned by UpdateStatus when the payment's current
// status does not permit the requested transition. Current is the status
// observed under the store's write lock, so it is authoritative even when
// concurrent requests race on the same payment.
type StatusConflictError struct {
	PaymentID int64
	Current   domain.Status
	Target    domain.Status
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("payment %d: status %s does not allow transition to %s", e.PaymentID, e.Current, e.Target)
}
