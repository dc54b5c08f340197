package domain

import "time"

// VerificationRecord is the pending code issued to a recipient.
// A recipient has at most one record; issuing again replaces it.
type VerificationRecord struct {
	Recipient string    `json:"recipient" dynamodbav:"recipient"`
	Code      string    `json:"code" dynamodbav:"code"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"-"`
}

// Outcome is the result of redeeming a supplied code against the pending record.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeExpired
	OutcomeMismatch
	OutcomeSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeExpired:
		return "expired"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Purpose selects the message template and response wording for a code.
// Records of every purpose share one recipient-keyed namespace.
type Purpose string

const (
	PurposeVerification  Purpose = "verification"
	PurposePasswordReset Purpose = "password_reset"
)

func (p Purpose) Valid() bool {
	return p == PurposeVerification || p == PurposePasswordReset
}

// SendCodeRequest is the body of the code request endpoints.
type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest is the body of the code submission endpoints.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}
