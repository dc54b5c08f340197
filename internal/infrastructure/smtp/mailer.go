package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/moodgarden/verify-api/internal/config"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is a single HTML e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// sender is the part of *mail.Client the mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type mailer struct {
	client   sender
	from     string
	fromName string
	logger   *zap.Logger
}

// NewMailer builds an SMTP mailer. Encryption is "ssl" (implicit TLS), "starttls" or "none".
func NewMailer(cfg *config.Config, logger *zap.Logger) (Mailer, error) {
	if cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("SMTP_FROM is required")
	}

	opts := []mail.Option{mail.WithPort(cfg.SMTPPort)}
	switch cfg.SMTPEncryption {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "starttls", "tls":
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case "none":
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		return nil, fmt.Errorf("unknown SMTP encryption %q", cfg.SMTPEncryption)
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	logger.Info("smtp mailer configured",
		zap.String("host", cfg.SMTPHost),
		zap.Int("port", cfg.SMTPPort),
		zap.String("encryption", cfg.SMTPEncryption),
	)
	return newMailer(client, cfg.SMTPFrom, cfg.SMTPFromName, logger), nil
}

func newMailer(client sender, from, fromName string, logger *zap.Logger) *mailer {
	return &mailer{client: client, from: from, fromName: fromName, logger: logger}
}

func (m *mailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)

	start := time.Now()
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	m.logger.Debug("email sent",
		zap.String("subject", msg.Subject),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
