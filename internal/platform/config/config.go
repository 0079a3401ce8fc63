package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	BlobRoot      string
	Redis         RedisConfig
	Kafka         KafkaConfig
	IntentTTL     time.Duration
	SweepInterval time.Duration
}

// RedisConfig holds connection settings for the upload-intent store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit sink settings. Empty brokers disables the sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv reads configuration from the environment, applying development
// defaults where unset.
func FromEnv() Server {
	addr := os.Getenv("AMPARO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	blobRoot := os.Getenv("AMPARO_BLOB_ROOT")
	if blobRoot == "" {
		blobRoot = "/var/lib/amparo/blobs"
	}

	topic := os.Getenv("AMPARO_AUDIT_TOPIC")
	if topic == "" {
		topic = "amparo.audit"
	}

	var brokers []string
	if raw := os.Getenv("AMPARO_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("AMPARO_DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		BlobRoot:      blobRoot,
		Redis: RedisConfig{
			URL:          os.Getenv("AMPARO_REDIS_URL"),
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
		IntentTTL:     15 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}
