// Package verification holds the pending-code store: issuance of single-use codes keyed by
// recipient, validation with lazy expiry, and the bulk sweep of expired records.
package verification

import (
	"context"
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
)

// DefaultTTL is how long an issued code stays redeemable.
const DefaultTTL = 30 * time.Minute

// Store is implemented by every verification backend. Each operation is atomic with
// respect to the others for the same recipient.
type Store interface {
	// Issue generates a code for recipient, replacing any pending record, and returns it.
	Issue(ctx context.Context, recipient string) (string, error)
	// Validate redeems code for recipient. The record is deleted on OutcomeSuccess and OutcomeExpired.
	Validate(ctx context.Context, recipient, code string) (domain.Outcome, error)
	// Sweep deletes every expired record and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}

// Options configures a backend. Zero values select the defaults.
type Options struct {
	TTL     time.Duration
	Now     func() time.Time
	NewCode CodeGenerator
}

// WithDefaults returns o with every unset field filled in.
func (o Options) WithDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewCode == nil {
		o.NewCode = NewCode
	}
	return o
}

// NewRecord builds the record for a fresh issuance.
func (o Options) NewRecord(recipient string) domain.VerificationRecord {
	return domain.VerificationRecord{
		Recipient: recipient,
		Code:      o.NewCode(),
		ExpiresAt: o.Now().Add(o.TTL),
	}
}
