package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "odyssey/pkg/platform/strings"
)

// Config aggregates all runtime configuration so main stays lean.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Autonomy AutonomyConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	JWTSigningKey   string
	DetectorKeyHash string
}

// PostgresConfig holds the database connection settings.
type PostgresConfig struct {
	URL string
}

// RedisConfig holds connection settings for the cache backing store.
// An empty URL means Redis is not configured.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds audit publication settings. Empty brokers disable the
// outbox relay.
type KafkaConfig struct {
	Brokers      []string
	AuditTopic   string
	PollInterval time.Duration
}

// AutonomyConfig holds the dispatcher defaults.
type AutonomyConfig struct {
	// Latitude is the maximum risk score remediated without human sign-off.
	Latitude int
	// AuthorizedPrincipal is the single identity allowed to change the latitude.
	AuthorizedPrincipal string
	// FailOpenOnStateFetch treats a constitutional-state fetch failure as
	// active rather than suspending autonomy. Prevents permanent lockout.
	FailOpenOnStateFetch bool
	// PlatformAdminURL is the base URL of the hosting platform's admin API,
	// used for function restarts and deployment rollbacks.
	PlatformAdminURL string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            getEnv("ODYSSEY_ADDR", ":8080"),
			JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			DetectorKeyHash: os.Getenv("DETECTOR_KEY_HASH"),
		},
		Postgres: PostgresConfig{
			URL: getEnv("DATABASE_URL", "postgres://localhost:5432/odyssey?sslmode=disable"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:      splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:   getEnv("KAFKA_AUDIT_TOPIC", "odyssey.audit.events"),
			PollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		},
		Autonomy: AutonomyConfig{
			Latitude:             getEnvInt("AUTONOMY_LATITUDE", 40),
			AuthorizedPrincipal:  getEnv("AUTONOMY_AUTHORIZED_PRINCIPAL", "Master Architect Rickey Howard"),
			FailOpenOnStateFetch: getEnv("AUTONOMY_FAIL_OPEN", "true") == "true",
			PlatformAdminURL:     os.Getenv("PLATFORM_ADMIN_URL"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(v, ","))
}
