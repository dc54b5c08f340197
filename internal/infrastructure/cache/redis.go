package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/moodgarden/verify-api/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	RedisTypeSingle  = "redis"
	RedisTypeCluster = "redisCluster"
	pingTimeout      = time.Millisecond * 1500
)

// NewRedis connects to a single node or a cluster depending on cfg.Type and pings it.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	var client redis.UniversalClient
	switch cfg.Type {
	case RedisTypeSingle:
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Address,
			Password:     cfg.Password,
			DialTimeout:  time.Second * 1,
			ReadTimeout:  time.Second * 1,
			WriteTimeout: time.Second * 1,
		})
	case RedisTypeCluster:
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.ClusterAddresses,
			Password:     cfg.Password,
			DialTimeout:  time.Second * 1,
			ReadTimeout:  time.Second * 1,
			WriteTimeout: time.Second * 1,
		})
	default:
		return nil, fmt.Errorf("wrong redis type %q", cfg.Type)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
