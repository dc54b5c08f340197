package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/moodgarden/verify-api/internal/verification"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	fieldCode      = "code"
	fieldExpiresAt = "expires_at" // unix milliseconds

	maxAttempts = 5
	scanCount   = 200
)

// VerificationStore keeps each pending code in a hash at <prefix><recipient>. The key
// expires natively one TTL after issue, measured on the Redis clock.
type VerificationStore struct {
	client redis.UniversalClient
	prefix string
	opts   verification.Options
	logger *zap.Logger
}

func NewVerificationStore(client redis.UniversalClient, prefix string, opts verification.Options, logger *zap.Logger) *VerificationStore {
	return &VerificationStore{
		client: client,
		prefix: prefix,
		opts:   opts.WithDefaults(),
		logger: logger,
	}
}

func (s *VerificationStore) key(recipient string) string { return s.prefix + recipient }

func (s *VerificationStore) Issue(ctx context.Context, recipient string) (string, error) {
	rec := s.opts.NewRecord(recipient)
	key := s.key(recipient)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldCode, rec.Code, fieldExpiresAt, rec.ExpiresAt.UnixMilli())
		pipe.PExpire(ctx, key, s.opts.TTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("put verification: %w", err)
	}
	return rec.Code, nil
}

func (s *VerificationStore) Validate(ctx context.Context, recipient, code string) (domain.Outcome, error) {
	key := s.key(recipient)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var outcome domain.Outcome
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			rec, err := s.load(ctx, tx, recipient, key, zapcore.DPanicLevel)
			if err != nil {
				return err
			}
			var remove bool
			outcome, remove = verification.Check(rec, code, s.opts.Now())
			if !remove {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.OutcomeNotFound, err
		}
		return outcome, nil
	}
	return domain.OutcomeNotFound, fmt.Errorf("validate verification: record kept changing: %w", domain.ErrConflict)
}

// Sweep removes hashes that outlived their expiry. Native key expiry normally gets there
// first, so the count is usually zero.
func (s *VerificationStore) Sweep(ctx context.Context) (int, error) {
	var removed atomic.Int64
	scan := func(ctx context.Context, node redis.Cmdable) error {
		iter := node.Scan(ctx, 0, s.prefix+"*", scanCount).Iterator()
		for iter.Next(ctx) {
			ok, err := s.sweepKey(ctx, iter.Val())
			if err != nil {
				return err
			}
			if ok {
				removed.Add(1)
			}
		}
		return iter.Err()
	}

	var err error
	if cc, ok := s.client.(*redis.ClusterClient); ok {
		err = cc.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return scan(ctx, node)
		})
	} else {
		err = scan(ctx, s.client)
	}
	if err != nil {
		return int(removed.Load()), fmt.Errorf("sweep verifications: %w", err)
	}
	return int(removed.Load()), nil
}

func (s *VerificationStore) sweepKey(ctx context.Context, key string) (bool, error) {
	now := s.opts.Now()
	removed := false
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		// A corrupt hash must not take down the background sweep.
		rec, err := s.load(ctx, tx, key[len(s.prefix):], key, zapcore.ErrorLevel)
		if errors.Is(err, domain.ErrCorruptRecord) {
			return nil
		}
		if err != nil {
			return err
		}
		if rec == nil || !verification.Expired(*rec, now) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		removed = err == nil
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Re-issued or consumed concurrently; either way it is no longer ours to sweep.
		return false, nil
	}
	return removed, err
}

// load returns nil when the key does not exist. Malformed hashes are logged at lvl.
func (s *VerificationStore) load(ctx context.Context, tx *redis.Tx, recipient, key string, lvl zapcore.Level) (*domain.VerificationRecord, error) {
	fields, err := tx.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	code := fields[fieldCode]
	ms, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	if err != nil || ms <= 0 || !verification.ValidCode(code) {
		s.logger.Log(lvl, "corrupt verification record",
			zap.String("key", key),
			zap.Int("fields", len(fields)),
		)
		return nil, fmt.Errorf("%s: malformed hash: %w", recipient, domain.ErrCorruptRecord)
	}
	return &domain.VerificationRecord{
		Recipient: recipient,
		Code:      code,
		ExpiresAt: time.UnixMilli(ms).UTC(),
	}, nil
}
