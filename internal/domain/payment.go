package domain

import "time"

// Status represents the current lifecycle status of a payment.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusRefunded  Status = "REFUNDED"
)

// transitions is the closed set of legal status transitions.
// NEW can be approved or rejected by the payer; only a CONFIRMED
// payment can be refunded. REJECTED and REFUNDED are terminal.
var transitions = map[Status][]Status{
	StatusNew:       {StatusConfirmed, StatusRejected},
	StatusConfirmed: {StatusRefunded},
	StatusRejected:  {},
	StatusRefunded:  {},
}

// CanTransitionTo reports whether moving from s to target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Payment represents a payment tracked by the emulator.
type Payment struct {
	PaymentID       int64
	OrderID         string
	Amount          int64 // minor currency units
	Description     string
	TerminalKey     string
	SuccessURL      string
	FailURL         string
	NotificationURL string
	Status          Status
	RequestPayload  map[string]any // verbatim /v2/Init request body
	Webhooks        []WebhookAttempt
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WebhookAttempt records a single outbound notification delivery attempt.
// ResponseStatus 0 means the request never reached the merchant (transport
// failure); ResponseBody then carries the error text instead of the reply.
type WebhookAttempt struct {
	ID             string
	PaymentID      int64
	Payload        map[string]any
	ResponseStatus int
	ResponseBody   string
	SentAt         time.Time
}
