package service

import (
	"fmt"

	"github.com/vasyakrg/tbank-test-gateway/internal/domain"
)

// InvalidTransitionError is returned when a requested status change is not
// legal from the payment's current status. It carries the current status so
// the API layer can surface it in the error message.
type InvalidTransitionError struct {
	PaymentID int64
	Current   domain.Status
	Target    domain.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("payment %d: cannot transition from %s to %s", e.PaymentID, e.Current, e.Target)
}
