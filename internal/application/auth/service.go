package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/moodgarden/verify-api/internal/infrastructure/smtp"
	"github.com/moodgarden/verify-api/internal/metrics"
	"github.com/moodgarden/verify-api/internal/verification"
	"go.uber.org/zap"
)

// CodeStore is the part of verification.Store the service uses.
type CodeStore interface {
	Issue(ctx context.Context, recipient string) (string, error)
	Validate(ctx context.Context, recipient, code string) (domain.Outcome, error)
}

type Service interface {
	// RequestCode issues a fresh code for email and mails it. A delivery failure is
	// wrapped in domain.ErrDelivery; the issued code stays redeemable.
	RequestCode(ctx context.Context, purpose domain.Purpose, email string) error
	// VerifyCode redeems code. It returns nil on success and one of domain.ErrCodeNotFound,
	// domain.ErrCodeExpired or domain.ErrCodeMismatch when the code is rejected.
	VerifyCode(ctx context.Context, purpose domain.Purpose, email, code string) error
}

type ServiceDeps struct {
	Store   CodeStore
	Mailer  smtp.Mailer
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	TTL     time.Duration // stated in the e-mail; must match the store's TTL
	Now     func() time.Time
}

type service struct {
	store   CodeStore
	mailer  smtp.Mailer
	metrics *metrics.Metrics
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:   deps.Store,
		mailer:  deps.Mailer,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		ttl:     deps.TTL,
		now:     deps.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.ttl <= 0 {
		s.ttl = verification.DefaultTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) RequestCode(ctx context.Context, purpose domain.Purpose, email string) error {
	if !purpose.Valid() {
		return fmt.Errorf("purpose %q: %w", purpose, domain.ErrBadRequest)
	}
	code, err := s.store.Issue(ctx, email)
	if err != nil {
		return fmt.Errorf("issue %s code: %w", purpose, err)
	}
	s.metrics.CodeIssued(purpose)
	s.logger.Debug("code issued",
		zap.String("purpose", string(purpose)),
		zap.String("email", email),
		zap.String("code", code),
	)

	msg, err := smtp.CodeMessage(purpose, email, code, s.ttl, s.now())
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.metrics.CodeDelivered(purpose, false)
		s.logger.Error("code delivery failed",
			zap.String("purpose", string(purpose)),
			zap.String("email", email),
			zap.Error(err),
		)
		return fmt.Errorf("deliver %s code: %w: %w", purpose, domain.ErrDelivery, err)
	}
	s.metrics.CodeDelivered(purpose, true)
	s.logger.Info("code sent",
		zap.String("purpose", string(purpose)),
		zap.String("email", email),
	)
	return nil
}

func (s *service) VerifyCode(ctx context.Context, purpose domain.Purpose, email, code string) error {
	outcome, err := s.store.Validate(ctx, email, code)
	if err != nil {
		return fmt.Errorf("validate %s code: %w", purpose, err)
	}
	s.metrics.CodeValidated(purpose, outcome)
	s.logger.Info("code validated",
		zap.String("purpose", string(purpose)),
		zap.String("email", email),
		zap.Stringer("outcome", outcome),
	)
	return domain.OutcomeError(outcome)
}
