// Package config provides configuration management for the roomcast server.
// It loads settings from environment variables (and an optional .env file)
// with sensible defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the roomcast server.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
}

// ServerConfig holds listener, transport and room configuration.
type ServerConfig struct {
	ListenAddr           string        `env:"LISTEN_ADDR" envDefault:":5555"`
	IntakeCapacity       int           `env:"INTAKE_CAPACITY" envDefault:"64"`
	SubscriptionCapacity int           `env:"SUBSCRIPTION_CAPACITY" envDefault:"64"`
	HistoryCapacity      int           `env:"HISTORY_CAPACITY" envDefault:"128"`
	IdleTimeout          time.Duration `env:"IDLE_TIMEOUT" envDefault:"0s"` // 0 disables
	ReadBufferSize       int           `env:"READ_BUFFER_SIZE" envDefault:"1024"`
	Framing              string        `env:"FRAMING" envDefault:"raw"` // raw, length
	MaxFrameSize         int           `env:"MAX_FRAME_SIZE" envDefault:"1048576"`
	Transport            string        `env:"TRANSPORT" envDefault:"plain"` // plain, tls
	TLSCertFile          string        `env:"TLS_CERT_FILE"`
	TLSKeyFile           string        `env:"TLS_KEY_FILE"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	EnableNotifications  bool          `env:"ENABLE_NOTIFICATIONS" envDefault:"false"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`     // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"console"` // console, json
}

// DatabaseConfig holds the optional audit archive connection.
// An empty Driver disables the archive.
type DatabaseConfig struct {
	Driver           string        `env:"DB_DRIVER"` // mysql, postgres, sqlite3
	Host             string        `env:"DB_HOST" envDefault:"localhost"`
	Port             int           `env:"DB_PORT"` // 0 selects the driver's default port
	User             string        `env:"DB_USER" envDefault:"roomcast"`
	Password         string        `env:"DB_PASSWORD"`
	Database         string        `env:"DB_NAME" envDefault:"roomcast"`
	Prefix           string        `env:"DB_PREFIX" envDefault:"roomcast_"` // Table prefix
	AutoMigrate      bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	ArchiveQueueSize int           `env:"ARCHIVE_QUEUE_SIZE" envDefault:"1024"`
	ArchiveRetention time.Duration `env:"ARCHIVE_RETENTION" envDefault:"0s"` // 0 keeps messages forever
}

// Load loads configuration from environment variables.
// Variables already set in the environment take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.Log),
		validation.Field(&c.Database),
	)
}

// Validate checks server settings.
func (c ServerConfig) Validate() error {
	tls := c.Transport == "tls"
	return validation.ValidateStruct(&c,
		validation.Field(&c.ListenAddr, validation.Required),
		validation.Field(&c.IntakeCapacity, validation.Required, validation.Min(1)),
		validation.Field(&c.SubscriptionCapacity, validation.Required, validation.Min(1)),
		validation.Field(&c.HistoryCapacity, validation.Min(0)),
		validation.Field(&c.IdleTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ReadBufferSize, validation.Required, validation.Min(1)),
		validation.Field(&c.Framing, validation.Required, validation.In("raw", "length")),
		validation.Field(&c.MaxFrameSize, validation.Required, validation.Min(1)),
		validation.Field(&c.Transport, validation.Required, validation.In("plain", "tls")),
		validation.Field(&c.TLSCertFile, validation.When(tls, validation.Required)),
		validation.Field(&c.TLSKeyFile, validation.When(tls, validation.Required)),
		validation.Field(&c.ShutdownTimeout, validation.Required, validation.Min(time.Duration(0))),
	)
}

// Validate checks logger settings.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.Required, validation.In("console", "json")),
	)
}

// Validate checks archive settings. Nothing but the driver name is checked
// when the archive is disabled.
func (c DatabaseConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	network := c.Driver == "mysql" || c.Driver == "postgres"
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.In("mysql", "postgres", "sqlite3")),
		validation.Field(&c.Host, validation.When(network, validation.Required)),
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.User, validation.When(network, validation.Required)),
		validation.Field(&c.Password, validation.When(network, validation.Required)),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.ArchiveQueueSize, validation.Required, validation.Min(1)),
		validation.Field(&c.ArchiveRetention, validation.Min(time.Duration(0))),
	)
}

// Enabled reports whether an archive database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.Driver != ""
}

// GetDSN returns the database connection string based on driver.
func (c *DatabaseConfig) GetDSN() string {
	switch strings.ToLower(c.Driver) {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.port(3306), c.Database)
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.port(5432), c.User, c.Password, c.Database)
	case "sqlite3":
		return c.Database // SQLite uses file path as DSN
	default:
		return ""
	}
}

func (c *DatabaseConfig) port(fallback int) int {
	if c.Port == 0 {
		return fallback
	}
	return c.Port
}
