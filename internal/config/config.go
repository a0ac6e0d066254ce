package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig selects where per-user filter state and flash notices live.
type SessionConfig struct {
	Backend    string        `yaml:"backend"` // memory or redis
	RedisURL   string        `yaml:"redis_url"`
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json or tint
}

type ReportsConfig struct {
	Directory string `yaml:"directory"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
	Reports  ReportsConfig  `yaml:"reports"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
		Database: DatabaseConfig{
			Path: "monthlyReport.db",
		},
		Session: SessionConfig{
			Backend:    "memory",
			RedisURL:   "redis://localhost:6379/0",
			CookieName: "scanledger_session",
			TTL:        24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Reports: ReportsConfig{
			Directory: "./reports",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("session.backend must be 'memory' or 'redis', got %q", c.Session.Backend)
	}
	switch c.Log.Format {
	case "text", "json", "tint":
	default:
		return fmt.Errorf("log.format must be 'text', 'json' or 'tint', got %q", c.Log.Format)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
