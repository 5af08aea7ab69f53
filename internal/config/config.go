// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	AppPort int `env:"APP_PORT" envDefault:"8080"`

	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`
	RedisURL      string `env:"REDIS_URL,required,notEmpty"`

	// An empty KafkaBootstrapServers disables payment decision events.
	KafkaBootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS"`
	KafkaTopic            string `env:"KAFKA_TOPIC" envDefault:"payment_decisions"`
	KafkaGroupID          string `env:"KAFKA_GROUP_ID" envDefault:"outreach_service_group"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	// ApproverTokenHash is an argon2id PHC string; empty means nobody can approve.
	ApproverTokenHash string `env:"APPROVER_TOKEN_HASH"`

	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SendTimeout     time.Duration `env:"SEND_TIMEOUT" envDefault:"30s"`
	SendConcurrency int           `env:"SEND_CONCURRENCY" envDefault:"4"`
	ScrapeTimeout   time.Duration `env:"SCRAPE_TIMEOUT" envDefault:"15s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// KafkaEnabled reports whether payment decision events are produced and consumed.
func (c *Config) KafkaEnabled() bool {
	return c.KafkaBootstrapServers != ""
}

// NotificationsEnabled reports whether the system mail account is configured.
func (c *Config) NotificationsEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPUser != "" && c.SMTPPassword != "" && c.MailFrom != ""
}

// Load parses environment variables and returns a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// Compose files often quote the broker list.
	cfg.KafkaBootstrapServers = strings.Trim(cfg.KafkaBootstrapServers, "\"")
	return cfg, nil
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
func (c *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	log.SetLevel(level)

	switch c.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}
