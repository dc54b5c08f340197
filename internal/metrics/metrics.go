package metrics

import (
	"net/http"
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	codesIssued     *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
	validations     *prometheus.CounterVec
	codesSwept      prometheus.Counter
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		codesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_codes_issued_total",
			Help: "Total verification codes issued by purpose.",
		}, []string{"purpose"}),
		deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_code_deliveries_total",
			Help: "Total code deliveries by purpose and result.",
		}, []string{"purpose", "status"}),
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_validations_total",
			Help: "Total code validations by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		codesSwept: f.NewCounter(prometheus.CounterOpts{
			Name: "verification_codes_swept_total",
			Help: "Total expired codes removed by the periodic sweep.",
		}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and response status.",
		}, []string{"method", "path", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) CodeIssued(p domain.Purpose) {
	if m != nil {
		m.codesIssued.WithLabelValues(string(p)).Inc()
	}
}

func (m *Metrics) CodeDelivered(p domain.Purpose, ok bool) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	m.deliveries.WithLabelValues(string(p), status).Inc()
}

func (m *Metrics) CodeValidated(p domain.Purpose, o domain.Outcome) {
	if m != nil {
		m.validations.WithLabelValues(string(p), o.String()).Inc()
	}
}

func (m *Metrics) CodesSwept(n int) {
	if m != nil && n > 0 {
		m.codesSwept.Add(float64(n))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, status).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
