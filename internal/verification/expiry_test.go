package verification

import (
	"testing"
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExpired_Boundary(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rec := domain.VerificationRecord{Code: "123456", ExpiresAt: at}

	assert.False(t, Expired(rec, at.Add(-time.Nanosecond)))
	assert.True(t, Expired(rec, at))
	assert.True(t, Expired(rec, at.Add(time.Second)))
}

func TestCheck_Priority(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	live := &domain.VerificationRecord{Code: "123456", ExpiresAt: now.Add(time.Minute)}
	stale := &domain.VerificationRecord{Code: "123456", ExpiresAt: now.Add(-time.Minute)}
	boundary := &domain.VerificationRecord{Code: "123456", ExpiresAt: now}

	cases := []struct {
		name    string
		rec     *domain.VerificationRecord
		code    string
		outcome domain.Outcome
		remove  bool
	}{
		{"absent", nil, "123456", domain.OutcomeNotFound, false},
		{"expired with matching code", stale, "123456", domain.OutcomeExpired, true},
		{"expired with wrong code", stale, "000000", domain.OutcomeExpired, true},
		{"matching code at the expiry instant", boundary, "123456", domain.OutcomeExpired, true},
		{"live with wrong code", live, "000000", domain.OutcomeMismatch, false},
		{"live with matching code", live, "123456", domain.OutcomeSuccess, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, remove := Check(tc.rec, tc.code, now)
			assert.Equal(t, tc.outcome, outcome)
			assert.Equal(t, tc.remove, remove)
		})
	}
}
