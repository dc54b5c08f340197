package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CodeIssued(domain.PurposeVerification)
	m.CodeIssued(domain.PurposeVerification)
	m.CodeDelivered(domain.PurposePasswordReset, false)
	m.CodeValidated(domain.PurposeVerification, domain.OutcomeExpired)
	m.CodesSwept(3)
	m.CodesSwept(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.codesIssued.WithLabelValues("verification")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("password_reset", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("verification", "expired")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.codesSwept))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CodeIssued(domain.PurposeVerification)
		m.CodeDelivered(domain.PurposeVerification, true)
		m.CodeValidated(domain.PurposeVerification, domain.OutcomeSuccess)
		m.CodesSwept(1)
		m.ObserveRequest("GET", "/health", "200", time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("POST", "/verify-code", "200", 5*time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="POST",path="/verify-code",status="200"} 1`)
}
