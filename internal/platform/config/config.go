package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	strutil "healx/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr     string
	LogLevel slog.Level

	// DatabaseURL selects the Postgres stores. Empty keeps everything in memory.
	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	JWTSigningKey string
	SessionTTL    time.Duration

	Lifecycle LifecyclePolicy
	RateLimit RateLimitConfig

	// TrustedProxyHops is the number of reverse proxies in front of the
	// server. Zero ignores forwarding headers and keys clients by peer address.
	TrustedProxyHops int

	// SignerSeed is a hex ed25519 seed for the server notary. Empty generates
	// a throwaway key at startup.
	SignerSeed string
}

// RedisConfig configures the provenance replay guard. URL empty = in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MarkerTTL    time.Duration
}

// KafkaConfig configures the lifecycle event sink. No brokers = log sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	// DeliveryTimeout bounds how long a record may wait for acknowledgement,
	// retries included.
	DeliveryTimeout time.Duration
}

// LifecyclePolicy holds the product decisions that are off by default.
type LifecyclePolicy struct {
	DefaultComplianceScore int
	EnforceDateOrder       bool
	EnforceTransferChain   bool
}

// RateLimitConfig bounds requests per client IP on the public routes. A
// limit of zero disables that class.
type RateLimitConfig struct {
	Disabled        bool
	VerifyPerMinute int
	AuthPerMinute   int
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (Server, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Server{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:          getenv("HEALX_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY", devSigningKey),
		SignerSeed:    os.Getenv("SIGNER_SEED"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: strutil.SplitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getenv("KAFKA_LIFECYCLE_TOPIC", "healx.lifecycle"),
		},
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return Server{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 12*time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.Redis.MarkerTTL, err = durationEnv("MARKER_TTL", 0); err != nil {
		return Server{}, err
	}
	if cfg.Lifecycle.DefaultComplianceScore, err = intEnv("DEFAULT_COMPLIANCE_SCORE", 95); err != nil {
		return Server{}, err
	}
	if s := cfg.Lifecycle.DefaultComplianceScore; s < 0 || s > 100 {
		return Server{}, fmt.Errorf("DEFAULT_COMPLIANCE_SCORE must be within 0..100, got %d", s)
	}
	if cfg.Lifecycle.EnforceDateOrder, err = boolEnv("ENFORCE_DATE_ORDER"); err != nil {
		return Server{}, err
	}
	if cfg.Lifecycle.EnforceTransferChain, err = boolEnv("ENFORCE_TRANSFER_CHAIN"); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.Disabled, err = boolEnv("RATE_LIMIT_DISABLED"); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.VerifyPerMinute, err = intEnv("RATE_LIMIT_VERIFY_PER_MINUTE", 120); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.AuthPerMinute, err = intEnv("RATE_LIMIT_AUTH_PER_MINUTE", 20); err != nil {
		return Server{}, err
	}
	if cfg.TrustedProxyHops, err = intEnv("TRUSTED_PROXY_HOPS", 0); err != nil {
		return Server{}, err
	}
	if cfg.TrustedProxyHops < 0 {
		return Server{}, fmt.Errorf("TRUSTED_PROXY_HOPS must not be negative, got %d", cfg.TrustedProxyHops)
	}
	if cfg.Kafka.DeliveryTimeout, err = durationEnv("KAFKA_DELIVERY_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// UsesDevSigningKey flags the built-in key so main can warn about it.
func (s Server) UsesDevSigningKey() bool {
	return s.JWTSigningKey == devSigningKey
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
