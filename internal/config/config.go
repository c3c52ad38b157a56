// Package config handles resolving configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/stolasapp/whisper/internal/sec"
	"github.com/stolasapp/whisper/internal/storage/db"
)

// Environment variables that override the configuration file.
const (
	EnvEncryptionKey = "ENCRYPTION_KEY"
	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvWebAddress    = "WHISPER_WEB_ADDRESS"
	EnvLogLevel      = "WHISPER_LOG_LEVEL"
)

// Log levels accepted by log_level.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Config is the resolved application configuration.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	DevMode    bool   `yaml:"dev_mode"`
	WebAddress string `yaml:"web_address"`

	Database Database `yaml:"database"`

	// EncryptionKey is the hex encoded AES-256 message key.
	EncryptionKey string `yaml:"encryption_key"`
	Admin         Admin  `yaml:"admin"`

	// MessageLimit caps the number of messages returned by a single listing.
	MessageLimit int32 `yaml:"message_limit"`
	// HashCost is the bcrypt cost for new password hashes.
	HashCost int `yaml:"hash_cost"`
	// HashWorkers bounds concurrent bcrypt computations.
	HashWorkers int `yaml:"hash_workers"`

	CORS CORS `yaml:"cors"`
}

// Database selects the storage backend.
type Database struct {
	Driver db.Driver `yaml:"driver"`
	DSN    string    `yaml:"dsn"`
}

// Admin holds the operator credentials.
type Admin struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CORS controls cross-origin access to the API.
type CORS struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// DefaultPath is the configuration file read when none is specified.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "whisper.yaml")
}

// Default returns a version of the config with all default values populated.
// Note that this configuration is _not_ valid, as the encryption key and admin
// credentials must be provided by the user.
func Default() *Config {
	return &Config{
		LogLevel:   LogLevelInfo,
		WebAddress: "localhost:8080",
		Database: Database{
			Driver: db.DriverSQLite,
			DSN:    filepath.Join(xdg.DataHome, "whisper", "db.sqlite"),
		},
		MessageLimit: 100,
		HashCost:     10,
		HashWorkers:  runtime.GOMAXPROCS(0),
		CORS: CORS{
			AllowOrigins: []string{"*"},
		},
	}
}

// LookupFunc resolves environment variables. [os.LookupEnv] satisfies it.
type LookupFunc func(key string) (string, bool)

// Load loads an optional YAML configuration file from a path, merges it with
// defaults, applies environment overrides, and validates it for completeness.
// A missing file is not an error.
func Load(path string, env LookupFunc) (*Config, error) {
	cfg := Default()

	bytes, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err = yaml.Unmarshal(bytes, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
		}
	}

	if env != nil {
		cfg.applyEnv(env)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(env LookupFunc) {
	set := func(dst *string, key string) {
		if val, ok := env(key); ok && val != "" {
			*dst = val
		}
	}
	set(&c.EncryptionKey, EnvEncryptionKey)
	set(&c.Admin.Username, EnvAdminUsername)
	set(&c.Admin.Password, EnvAdminPassword)
	set(&c.WebAddress, EnvWebAddress)
	set(&c.LogLevel, EnvLogLevel)

	if url, ok := env(EnvDatabaseURL); ok && url != "" {
		c.Database.DSN = url
		if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
			c.Database.Driver = db.DriverPostgres
		}
	}
}

// Validate checks the configuration for completeness. The encryption key is
// fully parsed so that a bad key stops the process before it serves anything.
func (c *Config) Validate() error {
	var errs []error
	if _, err := sec.ParseKey(c.EncryptionKey); err != nil {
		errs = append(errs, err)
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		errs = append(errs, sec.ConfigurationError("admin username and password must be set"))
	}
	switch strings.ToLower(c.LogLevel) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		errs = append(errs, sec.ConfigurationError(fmt.Sprintf("unknown log level %q", c.LogLevel)))
	}
	if c.WebAddress == "" {
		errs = append(errs, sec.ConfigurationError("web_address must be set"))
	}
	if !c.Database.Driver.Valid() {
		errs = append(errs, sec.ConfigurationError(fmt.Sprintf("unknown database driver %q", c.Database.Driver)))
	}
	if c.Database.DSN == "" {
		errs = append(errs, sec.ConfigurationError("database dsn must be set"))
	}
	if c.HashCost < bcrypt.MinCost || c.HashCost > bcrypt.MaxCost {
		errs = append(errs, sec.ConfigurationError(
			fmt.Sprintf("hash_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)))
	}
	if c.MessageLimit <= 0 {
		errs = append(errs, sec.ConfigurationError("message_limit must be positive"))
	}
	return errors.Join(errs...)
}

// LogValue satisfies [slog.LogValuer], omitting secrets and the database DSN,
// which may embed a password.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("log_level", c.LogLevel),
		slog.Bool("dev_mode", c.DevMode),
		slog.String("web_address", c.WebAddress),
		slog.String("database_driver", string(c.Database.Driver)),
		slog.String("admin_username", c.Admin.Username),
		slog.Int("message_limit", int(c.MessageLimit)),
		slog.Int("hash_cost", c.HashCost),
		slog.Int("hash_workers", c.HashWorkers),
		slog.Any("cors_allow_origins", c.CORS.AllowOrigins),
	)
}
