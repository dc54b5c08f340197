package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")

	ErrCodeNotFound = errors.New("no pending code")
	ErrCodeExpired  = errors.New("code expired")
	ErrCodeMismatch = errors.New("code mismatch")

	// ErrDelivery means the code was issued and stored but could not be sent.
	ErrDelivery = errors.New("delivery failed")

	// ErrCorruptRecord means a backend returned a record that cannot have been written by this service.
	ErrCorruptRecord = errors.New("corrupt verification record")
)

// OutcomeError maps a non-success outcome to its sentinel error. It returns nil for OutcomeSuccess.
func OutcomeError(o Outcome) error {
	switch o {
	case OutcomeSuccess:
		return nil
	case OutcomeNotFound:
		return ErrCodeNotFound
	case OutcomeExpired:
		return ErrCodeExpired
	case OutcomeMismatch:
		return ErrCodeMismatch
	default:
		return fmt.Errorf("unknown outcome %d", int(o))
	}
}
