package verification

import (
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
)

// Expired reports whether rec can no longer be redeemed at now.
// Every backend uses it for both lazy expiry in Validate and eager expiry in Sweep.
// A record is already expired at the exact ExpiresAt instant, so Validate and Sweep
// never disagree about a record on the boundary.
func Expired(rec domain.VerificationRecord, now time.Time) bool {
	return !now.Before(rec.ExpiresAt)
}

// Check decides the outcome of redeeming code against rec at now. rec is nil when the
// recipient has no record. remove reports whether the backend must delete the record.
func Check(rec *domain.VerificationRecord, code string, now time.Time) (outcome domain.Outcome, remove bool) {
	switch {
	case rec == nil:
		return domain.OutcomeNotFound, false
	case Expired(*rec, now):
		return domain.OutcomeExpired, true
	case rec.Code != code:
		return domain.OutcomeMismatch, false
	default:
		return domain.OutcomeSuccess, true
	}
}
