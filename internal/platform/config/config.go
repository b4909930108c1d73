package config

import (
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// PostgresConfig captures the persistence connection settings. An empty DSN
// selects the in-memory stores (development and unit tests).
type PostgresConfig struct {
	DSN string
}

// RedisConfig captures cache connection settings. An empty URL disables the
// position search cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the activity event publishing settings. Empty brokers
// disable publishing; activity entries still land in the local store.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Config aggregates everything main needs to wire the engine.
type Config struct {
	Server   Server
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// PositionSearchCacheTTL bounds staleness of cached position search results.
var PositionSearchCacheTTL = 5 * time.Minute

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("MANDATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("MANDATE_ACTIVITY_TOPIC")
	if topic == "" {
		topic = "mandate.activity"
	}

	var brokers []string
	if raw := os.Getenv("MANDATE_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Config{
		Server: Server{
			Addr:          addr,
			JWTSigningKey: jwtSigningKey,
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("MANDATE_POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("MANDATE_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
