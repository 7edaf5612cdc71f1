// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port      int    `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`

	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"sqlite" validate:"oneof=memory sqlite"`
	DBPath         string `envconfig:"DB_PATH" default:"./data/bills.db" validate:"required_if=StorageBackend sqlite"`

	IngestMode         string        `envconfig:"INGEST_MODE" default:"simulated" validate:"oneof=simulated external"`
	IngestUploadDelay  time.Duration `envconfig:"INGEST_UPLOAD_DELAY" default:"1500ms"`
	IngestProcessDelay time.Duration `envconfig:"INGEST_PROCESS_DELAY" default:"2500ms"`

	TaxRate decimal.Decimal `envconfig:"TAX_RATE" default:"0.085"`

	NotifyBackend  string `envconfig:"NOTIFY_BACKEND" default:"log" validate:"oneof=log amqp"`
	AMQPURL        string `envconfig:"AMQP_URL" validate:"required_if=NotifyBackend amqp"`
	AMQPExchange   string `envconfig:"AMQP_EXCHANGE" default:"billsplit.notifications"`
	AMQPRoutingKey string `envconfig:"AMQP_ROUTING_KEY" default:"session.notification"`

	PaymentBackend string   `envconfig:"PAYMENT_BACKEND" default:"log" validate:"oneof=log kafka"`
	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS" validate:"required_if=PaymentBackend kafka"`
	KafkaTopic     string   `envconfig:"KAFKA_TOPIC" default:"billsplit.payment-requests"`

	// JWTSecret enables token validation. Empty runs without authentication.
	JWTSecret    string `envconfig:"JWT_SECRET"`
	AuthRequired bool   `envconfig:"AUTH_REQUIRED" default:"false"`

	// RateLimitPerMinute caps requests per client IP; 0 disables the limit.
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120" validate:"gte=0"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// SessionTTL drops sessions idle for longer; 0 keeps them until shutdown.
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"2h"`
}

// Load reads the given dotenv files (".env" when none are named) into the
// environment, then processes the environment into a validated Config.
// Missing dotenv files are ignored; variables already set take precedence.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}
	return FromEnv()
}

// FromEnv processes the current environment into a validated Config.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := calculator.ValidateTaxRate(c.TaxRate); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.IngestUploadDelay < 0 || c.IngestProcessDelay < 0 {
		return errors.New("invalid config: ingestion delays must not be negative")
	}
	if c.SessionTTL < 0 {
		return errors.New("invalid config: SESSION_TTL must not be negative")
	}
	if c.AuthRequired && c.JWTSecret == "" {
		return errors.New("invalid config: AUTH_REQUIRED needs JWT_SECRET")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AuthEnabled reports whether bearer tokens are validated.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}
