package smtp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moodgarden/verify-api/internal/config"
	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func TestMailer_Send(t *testing.T) {
	client := &fakeSender{}
	m := newMailer(client, "noreply@example.com", "Mood Garden", zap.NewNop())

	err := m.Send(context.Background(), Message{To: "a@b.com", Subject: "Hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)

	msg := client.sent[0]
	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"<a@b.com>"}, rcpts)
	assert.Equal(t, []string{"Hello"}, msg.GetGenHeader(mail.HeaderSubject))
	require.Len(t, msg.GetFrom(), 1)
	assert.Equal(t, "noreply@example.com", msg.GetFrom()[0].Address)
	assert.Equal(t, "Mood Garden", msg.GetFrom()[0].Name)
}

func TestMailer_SendErrors(t *testing.T) {
	t.Run("invalid recipient", func(t *testing.T) {
		m := newMailer(&fakeSender{}, "noreply@example.com", "Mood Garden", zap.NewNop())
		err := m.Send(context.Background(), Message{To: "not an address", Subject: "x"})
		assert.ErrorContains(t, err, "set to address")
	})

	t.Run("delivery failure", func(t *testing.T) {
		m := newMailer(&fakeSender{err: errors.New("535 auth failed")}, "noreply@example.com", "", zap.NewNop())
		err := m.Send(context.Background(), Message{To: "a@b.com", Subject: "x"})
		assert.ErrorContains(t, err, "535 auth failed")
	})
}

func TestNewMailer(t *testing.T) {
	base := config.Config{
		SMTPHost:       "smtp.example.com",
		SMTPPort:       465,
		SMTPUsername:   "user",
		SMTPPassword:   "pass",
		SMTPFrom:       "noreply@example.com",
		SMTPEncryption: "ssl",
	}

	for _, enc := range []string{"ssl", "starttls", "none"} {
		t.Run(enc, func(t *testing.T) {
			cfg := base
			cfg.SMTPEncryption = enc
			m, err := NewMailer(&cfg, zap.NewNop())
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}

	t.Run("unknown encryption", func(t *testing.T) {
		cfg := base
		cfg.SMTPEncryption = "rot13"
		_, err := NewMailer(&cfg, zap.NewNop())
		assert.ErrorContains(t, err, "unknown SMTP encryption")
	})

	t.Run("missing from", func(t *testing.T) {
		cfg := base
		cfg.SMTPFrom = ""
		_, err := NewMailer(&cfg, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestNoopMailer(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewNoopMailer(zap.New(core))

	err := m.Send(context.Background(), Message{To: "a@b.com", Subject: "Your Verification Code", HTML: "<p>123456</p>"})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "a@b.com", fields["to"])
	assert.NotContains(t, fields, "html")
}

func TestCodeMessage(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	msg, err := CodeMessage(domain.PurposeVerification, "a@b.com", "123456", 30*time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", msg.To)
	assert.Equal(t, "Your Verification Code", msg.Subject)
	assert.Contains(t, msg.HTML, "123456")
	assert.Contains(t, msg.HTML, "expire in 30 minutes")
	assert.Contains(t, msg.HTML, "Email Verification")
	assert.Contains(t, msg.HTML, "2024 Mood Garden")

	msg, err = CodeMessage(domain.PurposePasswordReset, "a@b.com", "654321", 10*time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, "Password Reset Request", msg.Subject)
	assert.Contains(t, msg.HTML, "654321")
	assert.Contains(t, msg.HTML, "expire in 10 minutes")

	_, err = CodeMessage(domain.Purpose("newsletter"), "a@b.com", "123456", time.Minute, now)
	assert.Error(t, err)
}
