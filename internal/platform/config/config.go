package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// PostgresURL selects the persistent store. Empty means in-memory stores
	// (development and tests).
	PostgresURL string

	Redis RedisConfig

	// KafkaBrokers and KafkaTopic configure the change-event publisher. Empty
	// brokers means events are dropped (noop publisher).
	KafkaBrokers []string
	KafkaTopic   string

	// UpsertRetryAttempts bounds the optimistic-concurrency retry loop.
	UpsertRetryAttempts int
}

// RedisConfig holds connection settings for the period cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PeriodTTL bounds staleness of cached reporting periods.
	PeriodTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PUBCRED_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	var brokers []string
	if raw := os.Getenv("PUBCRED_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("PUBCRED_KAFKA_TOPIC")
	if topic == "" {
		topic = "candidate-changes"
	}

	return Server{
		Addr:        addr,
		PostgresURL: os.Getenv("PUBCRED_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("PUBCRED_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PeriodTTL:    5 * time.Minute,
		},
		KafkaBrokers:        brokers,
		KafkaTopic:          topic,
		UpsertRetryAttempts: 3,
	}
}
