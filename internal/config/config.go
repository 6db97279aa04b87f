package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Identity IdentityConfig `mapstructure:"identity"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// WorkspaceIdle is how long an owner's unwatched workspace survives
	// without requests.
	WorkspaceIdle time.Duration `mapstructure:"workspace_idle"`
}

// BackendConfig points at the REST backend that owns apps, auth and dashboard data.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RealtimeConfig struct {
	Driver    string        `mapstructure:"driver"` // "memory" | "redis"
	RedisURL  string        `mapstructure:"redis_url"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Debounce  time.Duration `mapstructure:"debounce"`
}

type IdentityConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type PostgresConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	QueueSize    int    `mapstructure:"queue_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" | "json"
}

var ErrInvalidConfig = errors.New("invalid config")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.workspace_idle", 30*time.Minute)
	v.SetDefault("backend.base_url", "http://localhost:3000")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("realtime.driver", "memory")
	v.SetDefault("realtime.redis_url", "redis://localhost:6379/0")
	v.SetDefault("realtime.key_prefix", "rt:")
	v.SetDefault("realtime.debounce", 80*time.Millisecond)
	v.SetDefault("identity.secret", "chato-dev-secret")
	v.SetDefault("identity.ttl", time.Hour)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 10)
	v.SetDefault("postgres.queue_size", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads config.{yaml,json} from the usual locations, then applies
// CHATO_* environment overrides (CHATO_REALTIME_DRIVER=redis, ...).
// A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".chato"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("CHATO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Realtime.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("%w: realtime.driver %q", ErrInvalidConfig, c.Realtime.Driver)
	}
	if c.Server.WorkspaceIdle <= 0 {
		return fmt.Errorf("%w: server.workspace_idle must be positive", ErrInvalidConfig)
	}
	if c.Realtime.Debounce <= 0 {
		return fmt.Errorf("%w: realtime.debounce must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("%w: backend.base_url is required", ErrInvalidConfig)
	}
	if c.Identity.Secret == "" {
		return fmt.Errorf("%w: identity.secret is required", ErrInvalidConfig)
	}
	if c.Identity.TTL <= 0 {
		return fmt.Errorf("%w: identity.ttl must be positive", ErrInvalidConfig)
	}
	return nil
}

// ArchiveEnabled reports whether the Postgres activity archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return strings.TrimSpace(c.Postgres.DSN) != ""
}
