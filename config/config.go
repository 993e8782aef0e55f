package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
	// Public base URL of the club site, used for calendar links
	Hostname        string        `toml:"hostname" yaml:"hostname"`
	CorsOrigins     string        `toml:"cors_origins" yaml:"cors_origins"`
	CacheExpiration time.Duration `toml:"cache_expiration" yaml:"cache_expiration"`
	CacheSize       int64         `toml:"cache_size" yaml:"cache_size"`
}

// DatabaseConfig selects SQLite (path) or PostgreSQL (host, port, ...)
type DatabaseConfig struct {
	Driver   string `toml:"driver" yaml:"driver"`
	Path     string `toml:"path" yaml:"path"`
	Host     string `toml:"host" yaml:"host"`
	Port     int    `toml:"port" yaml:"port"`
	User     string `toml:"user" yaml:"user"`
	Password string `toml:"password" yaml:"password"`
	Name     string `toml:"name" yaml:"name"`
	SSLMode  string `toml:"sslmode" yaml:"sslmode"`
}

// BreakerConfig configures the circuit breaker in front of the database
type BreakerConfig struct {
	Enabled          bool          `toml:"enabled" yaml:"enabled"`
	MaxRequests      uint32        `toml:"max_requests" yaml:"max_requests"`
	Interval         time.Duration `toml:"interval" yaml:"interval"`
	Timeout          time.Duration `toml:"timeout" yaml:"timeout"`
	FailureThreshold uint32        `toml:"failure_threshold" yaml:"failure_threshold"`
}

// TidyConfig controls removal of past events
type TidyConfig struct {
	// Cron expression, empty disables scheduled tidying
	Schedule      string `toml:"schedule" yaml:"schedule"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days"`
}

type CalendarConfig struct {
	Name          string        `toml:"name" yaml:"name"`
	EventDuration time.Duration `toml:"event_duration" yaml:"event_duration"`
}

// Config represents the top-level configuration
type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Breaker  BreakerConfig  `toml:"breaker" yaml:"breaker"`
	Tidy     TidyConfig     `toml:"tidy" yaml:"tidy"`
	Calendar CalendarConfig `toml:"calendar" yaml:"calendar"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            3000,
			Hostname:        "http://localhost:3000",
			CorsOrigins:     "http://localhost:3000",
			CacheExpiration: 30 * time.Second,
			CacheSize:       32 << 20,
		},
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Path:    "ladtc.db",
			Host:    "localhost",
			Port:    5432,
			User:    "ladtc",
			Name:    "ladtc",
			SSLMode: "disable",
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		Tidy: TidyConfig{
			Schedule:      "@daily",
			RetentionDays: 365,
		},
		Calendar: CalendarConfig{
			Name:          "LADTC",
			EventDuration: 2 * time.Hour,
		},
	}
}

// LoadConfig reads a TOML or YAML file, picked by extension, on top of the
// defaults. Keys missing from the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, nil
}
