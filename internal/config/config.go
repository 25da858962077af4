// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Progress  ProgressConfig  `mapstructure:"progress"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Games     GamesConfig     `mapstructure:"games"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// CacheConfig holds TTL cache configuration.
type CacheConfig struct {
	// DefaultTTL is how long entries live without a refresh. One week
	// by default; sessions and counters older than this are abandoned.
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	// SweepInterval is how often the background sweeper scans for dead
	// entries. Zero disables the sweeper; expiry is then lazy-only.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ProgressConfig selects where user progress records live.
type ProgressConfig struct {
	// Backend is "memory" (TTL cache) or "postgres" (survives restarts).
	Backend string `mapstructure:"backend"`
	// TTL applies to the memory backend only and is refreshed on every
	// write, so it only expires users who went fully inactive.
	TTL time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig holds PostgreSQL connection configuration, used only
// when the progress backend is "postgres".
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Sequence SequenceConfig `mapstructure:"sequence"`
	Roll     RollConfig     `mapstructure:"roll"`
}

// SequenceConfig holds memory game configuration.
type SequenceConfig struct {
	Length      int   `mapstructure:"length"`       // secret digits per round
	Reward      int64 `mapstructure:"reward"`       // points per win
	MaxAttempts int   `mapstructure:"max_attempts"` // 0 = unlimited
}

// RollConfig holds dice roll game configuration.
type RollConfig struct {
	Reward int64 `mapstructure:"reward"` // points per winning roll
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the given directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, CACHE_DEFAULT_TTL, PROGRESS_BACKEND.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the process must not start with.
func (c *Config) Validate() error {
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache.default_ttl must be positive, got %s", c.Cache.DefaultTTL)
	}
	if c.Games.Sequence.Length < 1 {
		return fmt.Errorf("games.sequence.length must be at least 1, got %d", c.Games.Sequence.Length)
	}
	if c.Games.Sequence.Reward < 0 {
		return fmt.Errorf("games.sequence.reward must not be negative, got %d", c.Games.Sequence.Reward)
	}
	if c.Games.Sequence.MaxAttempts < 0 {
		return fmt.Errorf("games.sequence.max_attempts must not be negative, got %d", c.Games.Sequence.MaxAttempts)
	}
	switch c.Progress.Backend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("progress.backend must be memory or postgres, got %q", c.Progress.Backend)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Cache defaults: one week TTL, lazy expiry plus a slow sweep.
	v.SetDefault("cache.default_ttl", "604800s")
	v.SetDefault("cache.sweep_interval", "10m")

	// Progress defaults
	v.SetDefault("progress.backend", "memory")
	v.SetDefault("progress.ttl", "720h")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gamebot")
	v.SetDefault("database.name", "gamebot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Game defaults
	v.SetDefault("games.sequence.length", 5)
	v.SetDefault("games.sequence.reward", 50)
	v.SetDefault("games.sequence.max_attempts", 0)
	v.SetDefault("games.roll.reward", 20)
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
