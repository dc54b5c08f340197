package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 30*time.Minute, cfg.CodeTTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, "ssl", cfg.SMTPEncryption)
	assert.Equal(t, "verification:", cfg.Redis.KeyPrefix)
	assert.Nil(t, cfg.Redis.ClusterAddresses)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CODE_TTL", "10m")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("ALLOWED_ORIGINS", "https://moodgarden.app, http://localhost:5173")
	t.Setenv("REDIS_CLUSTER_ADDRS", "10.0.0.1:7000,10.0.0.2:7001")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := Load()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 10*time.Minute, cfg.CodeTTL)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, []string{"https://moodgarden.app", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.1:7000", "10.0.0.2:7001"}, cfg.Redis.ClusterAddresses)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.0001)
}
