// Package config loads server configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds the listen addresses of the two transports.
type ServerConfig struct {
	HTTPAddr       string        `mapstructure:"http_addr"`
	WSAddr         string        `mapstructure:"ws_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig holds the ledger store configuration.
type DatabaseConfig struct {
	// Path of the pebble object store.
	Path string `mapstructure:"path"`

	// Compression applied to stored objects: "none" or "lz4".
	Compression string `mapstructure:"compression"`

	// CacheSize is the number of object reads kept in memory.
	CacheSize int `mapstructure:"cache_size"`

	// HeaderIndex selects where ledger headers live: "pebble" keeps
	// them next to the objects, "postgres" uses a shared database.
	HeaderIndex string `mapstructure:"header_index"`

	// PostgresDSN is required when HeaderIndex is "postgres".
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_addr", ":5005")
	v.SetDefault("server.ws_addr", ":6006")
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("database.path", "data/ledger")
	v.SetDefault("database.compression", "lz4")
	v.SetDefault("database.cache_size", 16384)
	v.SetDefault("database.header_index", "pebble")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration in priority order: defaults, then the config
// file (when given), then GOCLIO_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("GOCLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must be set")
	}

	switch c.Database.Compression {
	case "none", "lz4":
	default:
		return fmt.Errorf("database.compression must be \"none\" or \"lz4\", got %q", c.Database.Compression)
	}

	switch c.Database.HeaderIndex {
	case "pebble":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn must be set when database.header_index is \"postgres\"")
		}
	default:
		return fmt.Errorf("database.header_index must be \"pebble\" or \"postgres\", got %q", c.Database.HeaderIndex)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	return nil
}
