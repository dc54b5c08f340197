package smtp

import (
	"context"

	"go.uber.org/zap"
)

// NoopMailer logs messages instead of delivering them. Used when SMTP_HOST is empty.
type NoopMailer struct {
	logger *zap.Logger
}

func NewNoopMailer(logger *zap.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

func (m *NoopMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email not sent, no SMTP host configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_length", len(msg.HTML)),
	)
	return nil
}
