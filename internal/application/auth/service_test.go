package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/moodgarden/verify-api/internal/infrastructure/smtp"
	"github.com/moodgarden/verify-api/internal/metrics"
	"github.com/moodgarden/verify-api/internal/verification"
	"github.com/moodgarden/verify-api/internal/verification/verificationtest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCodeStore struct{ mock.Mock }

func (m *mockCodeStore) Issue(ctx context.Context, recipient string) (string, error) {
	args := m.Called(ctx, recipient)
	return args.String(0), args.Error(1)
}
func (m *mockCodeStore) Validate(ctx context.Context, recipient, code string) (domain.Outcome, error) {
	args := m.Called(ctx, recipient, code)
	return args.Get(0).(domain.Outcome), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg smtp.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// --- builder ---

func newService(store CodeStore, ml smtp.Mailer, m *metrics.Metrics) Service {
	return NewService(ServiceDeps{
		Store:   store,
		Mailer:  ml,
		Metrics: m,
		TTL:     30 * time.Minute,
		Now:     func() time.Time { return verificationtest.Epoch },
	})
}

// --- RequestCode ---

func TestRequestCode_SendsRenderedEmail(t *testing.T) {
	store := &mockCodeStore{}
	store.On("Issue", mock.Anything, "a@b.com").Return("123456", nil)
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, mock.MatchedBy(func(msg smtp.Message) bool {
		return msg.To == "a@b.com" &&
			msg.Subject == "Your Verification Code" &&
			strings.Contains(msg.HTML, "123456") &&
			strings.Contains(msg.HTML, "30 minutes")
	})).Return(nil)

	err := newService(store, ml, nil).RequestCode(context.Background(), domain.PurposeVerification, "a@b.com")

	require.NoError(t, err)
	store.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRequestCode_PasswordResetSubject(t *testing.T) {
	store := &mockCodeStore{}
	store.On("Issue", mock.Anything, "a@b.com").Return("654321", nil)
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, mock.MatchedBy(func(msg smtp.Message) bool {
		return msg.Subject == "Password Reset Request" && strings.Contains(msg.HTML, "654321")
	})).Return(nil)

	err := newService(store, ml, nil).RequestCode(context.Background(), domain.PurposePasswordReset, "a@b.com")

	require.NoError(t, err)
	ml.AssertExpectations(t)
}

func TestRequestCode_UnknownPurpose(t *testing.T) {
	store := &mockCodeStore{}

	err := newService(store, &mockMailer{}, nil).RequestCode(context.Background(), domain.Purpose("newsletter"), "a@b.com")

	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	store.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestRequestCode_IssueError(t *testing.T) {
	store := &mockCodeStore{}
	store.On("Issue", mock.Anything, "a@b.com").Return("", errors.New("redis down"))
	ml := &mockMailer{}

	err := newService(store, ml, nil).RequestCode(context.Background(), domain.PurposeVerification, "a@b.com")

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrDelivery))
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRequestCode_DeliveryFailureKeepsCode(t *testing.T) {
	clock := verificationtest.NewClock(verificationtest.Epoch)
	store := verification.NewMemoryStore(verification.Options{Now: clock.Now})
	var sent smtp.Message
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(smtp.Message) }).
		Return(errors.New("535 authentication failed"))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	svc := newService(store, ml, m)
	err := svc.RequestCode(context.Background(), domain.PurposeVerification, "a@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDelivery))
	assert.ErrorContains(t, err, "535 authentication failed")

	expected := `
# HELP verification_code_deliveries_total Total code deliveries by purpose and result.
# TYPE verification_code_deliveries_total counter
verification_code_deliveries_total{purpose="verification",status="failure"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "verification_code_deliveries_total"))

	// The code that failed to go out is still redeemable.
	code := codeFrom(t, sent.HTML)
	require.NoError(t, svc.VerifyCode(context.Background(), domain.PurposeVerification, "a@b.com", code))
}

// --- VerifyCode ---

func TestVerifyCode_Outcomes(t *testing.T) {
	cases := []struct {
		outcome domain.Outcome
		want    error
	}{
		{domain.OutcomeSuccess, nil},
		{domain.OutcomeNotFound, domain.ErrCodeNotFound},
		{domain.OutcomeExpired, domain.ErrCodeExpired},
		{domain.OutcomeMismatch, domain.ErrCodeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.outcome.String(), func(t *testing.T) {
			store := &mockCodeStore{}
			store.On("Validate", mock.Anything, "a@b.com", "123456").Return(tc.outcome, nil)

			err := newService(store, nil, nil).VerifyCode(context.Background(), domain.PurposeVerification, "a@b.com", "123456")

			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tc.want), "got %v", err)
			}
		})
	}
}

func TestVerifyCode_StoreError(t *testing.T) {
	store := &mockCodeStore{}
	store.On("Validate", mock.Anything, "a@b.com", "123456").Return(domain.OutcomeNotFound, domain.ErrCorruptRecord)

	err := newService(store, nil, nil).VerifyCode(context.Background(), domain.PurposePasswordReset, "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCorruptRecord))
	assert.False(t, errors.Is(err, domain.ErrCodeNotFound))
}

func TestVerifyCode_RecordsOutcome(t *testing.T) {
	store := &mockCodeStore{}
	store.On("Validate", mock.Anything, "a@b.com", "000000").Return(domain.OutcomeMismatch, nil)
	reg := prometheus.NewRegistry()

	_ = newService(store, nil, metrics.New(reg)).VerifyCode(context.Background(), domain.PurposeVerification, "a@b.com", "000000")

	expected := `
# HELP verification_validations_total Total code validations by purpose and outcome.
# TYPE verification_validations_total counter
verification_validations_total{outcome="mismatch",purpose="verification"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "verification_validations_total"))
}

// --- helpers ---

func codeFrom(t *testing.T, html string) string {
	t.Helper()
	for _, field := range strings.Fields(html) {
		if verification.ValidCode(field) {
			return field
		}
	}
	t.Fatalf("no code in email body")
	return ""
}
