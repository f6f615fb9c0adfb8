package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Event store backends.
const (
	EventStoreMemory   = "memory"
	EventStorePostgres = "postgres"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Event store
	EventStore    string `env:"EVENT_STORE" envDefault:"memory"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"false"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"patience"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"patience"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"patience"`

	// Redis snapshot cache
	RedisURL     string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisEnabled bool          `env:"REDIS_ENABLED" envDefault:"false"`
	SnapshotTTL  time.Duration `env:"SNAPSHOT_TTL" envDefault:"30m"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"patience.game.events"`

	// Event relay
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// HTTP
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"600"`

	// Game
	ScoringPolicy string `env:"SCORING_POLICY" envDefault:"none"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the binaries cannot start with.
func (c *Config) Validate() error {
	switch c.EventStore {
	case EventStoreMemory, EventStorePostgres:
	default:
		return fmt.Errorf("EVENT_STORE must be %q or %q, got %q", EventStoreMemory, EventStorePostgres, c.EventStore)
	}
	if c.EventStore == EventStorePostgres && c.DatabaseURL == "" && (c.PGHost == "" || c.PGDatabase == "") {
		return fmt.Errorf("EVENT_STORE=postgres requires DATABASE_URL or PGHOST and PGDATABASE")
	}
	if c.EventStore == EventStoreMemory && c.RedisEnabled {
		return fmt.Errorf("REDIS_ENABLED requires EVENT_STORE=postgres: snapshots would outlive the in-memory log")
	}
	switch c.ScoringPolicy {
	case "standard", "none":
	default:
		return fmt.Errorf("SCORING_POLICY must be \"standard\" or \"none\", got %q", c.ScoringPolicy)
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	if c.OutboxPollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive, got %s", c.OutboxPollInterval)
	}
	if c.KafkaEnabled && len(c.Brokers()) == 0 {
		return fmt.Errorf("KAFKA_ENABLED requires KAFKA_BROKERS")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// Brokers splits KAFKA_BROKERS into addresses.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS into origins.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
