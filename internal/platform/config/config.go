package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr       string
	AdminToken string

	// PostgresURL switches the assessment and audit stores to Postgres when
	// set; empty means in-memory.
	PostgresURL string

	Redis RedisConfig

	// KafkaBrokers enables the Kafka audit sink when non-empty.
	KafkaBrokers    []string
	KafkaAuditTopic string

	OpenAI OpenAIConfig

	// CatalogPath overrides the embedded control catalog.
	CatalogPath string
}

// RedisConfig mirrors the knobs the redis client wrapper needs.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// OpenAIConfig configures the LLM adapters for applicability classification
// and evidence extraction.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ITSG33_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	adminToken := os.Getenv("ITSG33_ADMIN_TOKEN")
	if adminToken == "" {
		// Dev default; override in any shared deployment.
		adminToken = "dev-admin-token"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	auditTopic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "itsg33.audit"
	}

	return Server{
		Addr:        addr,
		AdminToken:  adminToken,
		PostgresURL: os.Getenv("ITSG33_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("ITSG33_REDIS_URL"),
			PoolSize:     envInt("ITSG33_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("ITSG33_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("ITSG33_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("ITSG33_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("ITSG33_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KafkaBrokers:    brokers,
		KafkaAuditTopic: auditTopic,
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   model,
			Timeout: envDuration("OPENAI_TIMEOUT", 120*time.Second),
		},
		CatalogPath: os.Getenv("ITSG33_CATALOG_PATH"),
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}
	return fallback
}
