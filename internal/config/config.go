package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendDynamo = "dynamo"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string // CORS allowed origins

	CodeTTL       time.Duration
	SweepInterval time.Duration
	StoreBackend  string

	Redis RedisConfig

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTable    string

	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
	SMTPFromName   string
	SMTPEncryption string // "ssl" | "starttls" | "none"

	RateLimitRPS   float64
	RateLimitBurst int
}

// RedisConfig selects a single node or a cluster.
type RedisConfig struct {
	Type             string // "redis" | "redisCluster"
	Address          string
	ClusterAddresses []string
	Password         string
	KeyPrefix        string
}

var defaults = map[string]any{
	"APP_PORT":                   "3000",
	"APP_ENV":                    "development",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"ALLOWED_ORIGINS":            "*",
	"CODE_TTL":                   "30m",
	"SWEEP_INTERVAL":             "5m",
	"STORE_BACKEND":              BackendMemory,
	"REDIS_TYPE":                 "redis",
	"REDIS_ADDR":                 "localhost:6379",
	"REDIS_CLUSTER_ADDRS":        "",
	"REDIS_PASSWORD":             "",
	"REDIS_KEY_PREFIX":           "verification:",
	"AWS_REGION":                 "us-east-1",
	"AWS_ENDPOINT_URL":           "",
	"AWS_ACCESS_KEY_ID":          "",
	"AWS_SECRET_ACCESS_KEY":      "",
	"DYNAMO_TABLE_VERIFICATIONS": "verification_codes",
	"SMTP_HOST":                  "",
	"SMTP_PORT":                  465,
	"SMTP_USERNAME":              "",
	"SMTP_PASSWORD":              "",
	"SMTP_FROM":                  "noreply@example.com",
	"SMTP_FROM_NAME":             "Mood Garden",
	"SMTP_ENCRYPTION":            "ssl",
	"RATE_LIMIT_RPS":             5,
	"RATE_LIMIT_BURST":           10,
}

// Load reads all configuration from environment variables.
func Load() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:        v.GetString("APP_PORT"),
		AppEnv:         v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		CodeTTL:        v.GetDuration("CODE_TTL"),
		SweepInterval:  v.GetDuration("SWEEP_INTERVAL"),
		StoreBackend:   strings.ToLower(v.GetString("STORE_BACKEND")),
		Redis: RedisConfig{
			Type:             v.GetString("REDIS_TYPE"),
			Address:          v.GetString("REDIS_ADDR"),
			ClusterAddresses: splitList(v.GetString("REDIS_CLUSTER_ADDRS")),
			Password:         v.GetString("REDIS_PASSWORD"),
			KeyPrefix:        v.GetString("REDIS_KEY_PREFIX"),
		},
		AWSRegion:      v.GetString("AWS_REGION"),
		AWSEndpointURL: v.GetString("AWS_ENDPOINT_URL"),
		AWSAccessKeyID: v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   v.GetString("AWS_SECRET_ACCESS_KEY"),
		DynamoTable:    v.GetString("DYNAMO_TABLE_VERIFICATIONS"),
		SMTPHost:       v.GetString("SMTP_HOST"),
		SMTPPort:       v.GetInt("SMTP_PORT"),
		SMTPUsername:   v.GetString("SMTP_USERNAME"),
		SMTPPassword:   v.GetString("SMTP_PASSWORD"),
		SMTPFrom:       v.GetString("SMTP_FROM"),
		SMTPFromName:   v.GetString("SMTP_FROM_NAME"),
		SMTPEncryption: strings.ToLower(v.GetString("SMTP_ENCRYPTION")),
		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
	}
}

// IsDevelopment reports whether the service runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv != "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
