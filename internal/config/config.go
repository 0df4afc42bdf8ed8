// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by the environment variable
// named in its env tag.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config is the root configuration structure.
type Config struct {
	// Env controls log format and verbosity: "dev", "staging" or "prod".
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// Storage picks the RegistrationStore backend: "memory" or "sqlite".
	// Both keep data in memory only.
	Storage string `yaml:"storage" env:"STORAGE" env-default:"memory"`

	// EditMode decides what a submit after an edit does: "duplicate"
	// commits a second record, "replace" overwrites the edited one.
	EditMode string `yaml:"edit_mode" env:"EDIT_MODE" env-default:"duplicate"`

	HTTPServer `yaml:"http_server"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Addr            string        `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`

	// MaxPhotoBytes caps a single uploaded photo.
	MaxPhotoBytes int64 `yaml:"max_photo_bytes" env:"HTTP_SERVER_MAX_PHOTO_BYTES" env-default:"5242880"`

	// SessionIdleTimeout is how long a browser's form state is kept after
	// its last request.
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout" env:"HTTP_SERVER_SESSION_IDLE_TIMEOUT" env-default:"30m"`

	// AllowedOrigins is the CORS allow-list for the JSON API.
	AllowedOrigins []string `yaml:"allowed_origins" env:"HTTP_SERVER_ALLOWED_ORIGINS" env-separator:","`
}

// Validate checks the values cleanenv cannot express with tags.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite:
	default:
		return fmt.Errorf("storage: unknown backend %q", c.Storage)
	}
	switch c.EditMode {
	case "duplicate", "replace":
	default:
		return fmt.Errorf("edit_mode: unknown mode %q", c.EditMode)
	}
	if c.MaxPhotoBytes <= 0 {
		return fmt.Errorf("http_server.max_photo_bytes: must be positive, got %d", c.MaxPhotoBytes)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("http_server.session_idle_timeout: must be positive, got %s", c.SessionIdleTimeout)
	}
	return nil
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// MustLoad resolves the config path from CONFIG_PATH or --config, then
// loads it. Any failure is fatal: if this returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
