package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr          string
	JWTSigningKey string
	Redis         RedisConfig
	Kafka         KafkaConfig
	PostgresDSN   string
	Dispatch      DispatchConfig
}

// RedisConfig configures the optional Redis subscription store. An empty URL
// means Redis is not configured and the in-memory store is used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional accepted-event stream publisher. Empty
// brokers disable publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// DispatchConfig bounds the webhook delivery workers.
type DispatchConfig struct {
	Workers int
	Timeout time.Duration
	Buffer  int
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("PINKSYNC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("PINKSYNC_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("PINKSYNC_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("PINKSYNC_KAFKA_TOPIC")
	if topic == "" {
		topic = "pinksync.accessibility-events"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		Redis: RedisConfig{
			URL:          os.Getenv("PINKSYNC_REDIS_URL"),
			PoolSize:     envInt("PINKSYNC_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("PINKSYNC_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("PINKSYNC_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("PINKSYNC_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("PINKSYNC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
		PostgresDSN: os.Getenv("PINKSYNC_POSTGRES_DSN"),
		Dispatch: DispatchConfig{
			Workers: envInt("PINKSYNC_DISPATCH_WORKERS", 4),
			Timeout: envDuration("PINKSYNC_DISPATCH_TIMEOUT", 10*time.Second),
			Buffer:  envInt("PINKSYNC_DISPATCH_BUFFER", 256),
		},
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
