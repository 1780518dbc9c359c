// Package config loads application configuration from a YAML file with
// .env and environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Privacy  PrivacyConfig  `yaml:"privacy"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds Postgres connection settings. MaxBindParams is the
// storage engine's bound-parameter ceiling, used to size bulk inserts.
type DatabaseConfig struct {
	URL           string `yaml:"url"`
	MaxBindParams int    `yaml:"max_bind_params"`
}

// RedisConfig holds the optional event fan-out settings. An empty Addr
// disables the redis event sink.
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	EventChannel string `yaml:"event_channel"`
}

// PrivacyConfig gates features that leak member data to third parties.
type PrivacyConfig struct {
	// DisableGravatar stops avatar URLs from being derived from member
	// email addresses.
	DisableGravatar bool `yaml:"disable_gravatar"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads and parses the config file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxBindParams == 0 {
		cfg.Database.MaxBindParams = 65535
	}
	if cfg.Redis.EventChannel == "" {
		cfg.Redis.EventChannel = "audience.events"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads the config file, then applies .env and environment
// overrides. The .env file is optional.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.URL = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if v := os.Getenv("MAX_BIND_PARAMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Database.MaxBindParams = n
		}
	}
	if v := os.Getenv("DISABLE_GRAVATAR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Privacy.DisableGravatar = b
		}
	}

	return cfg, nil
}
