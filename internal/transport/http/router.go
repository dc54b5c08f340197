package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/moodgarden/verify-api/internal/config"
	"github.com/moodgarden/verify-api/internal/transport/http/handler"
	appmiddleware "github.com/moodgarden/verify-api/internal/transport/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter builds the application router. The returned stop func releases the
// rate limiter's background cleanup and must be called once the router is retired.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, func()) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(appmiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(logger, "/health", "/metrics"))
	if deps.Metrics != nil {
		r.Use(appmiddleware.Metrics(deps.Metrics))
	}
	r.Use(appmiddleware.Recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.NotFound(handler.NotFound)

	// Applied to every endpoint that issues or redeems a code.
	codeRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	healthH := handler.NewHealthHandler(deps.Now)
	codeH := handler.NewCodeHandler(deps.AuthService)

	r.Get("/health", healthH.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(codeRL.Limit)

		r.Post("/send-verification-code", codeH.SendVerificationCode)
		r.Post("/verify-code", codeH.VerifyCode)
		r.Post("/send-password-reset", codeH.SendPasswordReset)
		r.Post("/verify-password-reset", codeH.VerifyPasswordReset)
	})

	return r, codeRL.Stop
}
