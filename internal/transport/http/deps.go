package http

import (
	"time"

	"github.com/moodgarden/verify-api/internal/application/auth"
	"github.com/moodgarden/verify-api/internal/metrics"
	"go.uber.org/zap"
)

// Deps holds everything the router needs.
type Deps struct {
	AuthService auth.Service
	Metrics     *metrics.Metrics // nil disables /metrics and request metrics
	Logger      *zap.Logger
	Now         func() time.Time
}
