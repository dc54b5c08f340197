package main

import (
	"context"
	"fmt"

	"github.com/moodgarden/verify-api/internal/config"
	"github.com/moodgarden/verify-api/internal/infrastructure/cache"
	"github.com/moodgarden/verify-api/internal/infrastructure/dynamo"
	"github.com/moodgarden/verify-api/internal/infrastructure/smtp"
	"github.com/moodgarden/verify-api/internal/verification"
	"go.uber.org/zap"
)

// openStore builds the backend named by STORE_BACKEND. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (verification.Store, func(), error) {
	opts := verification.Options{TTL: cfg.CodeTTL}
	noop := func() {}

	switch cfg.StoreBackend {
	case config.BackendMemory:
		return verification.NewMemoryStore(opts), noop, nil
	case config.BackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("close redis", zap.Error(err))
			}
		}
		return cache.NewVerificationStore(client, cfg.Redis.KeyPrefix, opts, logger), closeFn, nil
	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return dynamo.NewVerificationRepo(client, cfg.DynamoTable, opts, logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

// newMailer falls back to logging when no SMTP host is configured.
func newMailer(cfg *config.Config, logger *zap.Logger) (smtp.Mailer, error) {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, codes will be logged instead of mailed")
		return smtp.NewNoopMailer(logger), nil
	}
	return smtp.NewMailer(cfg, logger)
}
