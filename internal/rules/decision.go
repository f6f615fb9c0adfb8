package rules

import "github.com/patience/platform/internal/domain"

// Decision is the pure outcome of validating a move: exactly one of Event or
// Rejection is set.
type Decision struct {
	Event     domain.Event
	Rejection *domain.Rejection
}

// Accept returns a decision that emits evt.
func Accept(evt domain.Event) Decision {
	return Decision{Event: evt}
}

// Reject returns a decision carrying the reason the move was declined.
func Reject(code domain.RejectionCode, message string) Decision {
	return Decision{Rejection: &domain.Rejection{Code: code, Message: message}}
}

// Accepted reports whether the decision emits an event.
func (d Decision) Accepted() bool {
	return d.Rejection == nil && d.Event != nil
}
