package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flowwatch/internal/model"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Source   SourceConfig   `mapstructure:"source"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// EngineConfig controls polling and history retention.
type EngineConfig struct {
	PollIntervalMs     int      `mapstructure:"poll_interval_ms"`    // fixed-rate poll period, > 0
	HistoryCapacity    int      `mapstructure:"history_capacity"`    // sliding window per instrument, >= 1
	TrackedInstruments []string `mapstructure:"tracked_instruments"` // e.g. ["BTCUSDT", "ETHUSDT"]
}

// PollInterval returns PollIntervalMs as a duration.
func (c EngineConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// SourceConfig points at the fund-flow REST endpoint.
type SourceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FeedConfig configures the snapshot feed server.
type FeedConfig struct {
	Addr         string        `mapstructure:"addr"` // empty disables the feed
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ArchiveConfig configures the optional sample archive.
type ArchiveConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	QueueSize     int           `mapstructure:"queue_size"`
	Retention     time.Duration `mapstructure:"retention"` // 0 keeps rows forever
	PruneInterval time.Duration `mapstructure:"prune_interval"`
	CreateDB      bool          `mapstructure:"create_db"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.poll_interval_ms", 3000)
	v.SetDefault("engine.history_capacity", 20)

	v.SetDefault("source.path", "/fundflow")
	v.SetDefault("source.timeout", 10*time.Second)

	v.SetDefault("feed.addr", ":8080")
	v.SetDefault("feed.write_timeout", 5*time.Second)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.queue_size", 256)
	v.SetDefault("archive.prune_interval", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "dev")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
}

// Load reads config.yaml from the default location and overrides it with
// environment variables. Under `go run` and `go test` the directory is
// resolved from the working directory, otherwise from the executable.
func Load() (*Config, error) {
	if dir := os.Getenv("FLOWWATCH_CONFIG_DIR"); dir != "" {
		return LoadFrom(dir)
	}

	ex, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		return LoadFrom(filepath.Join(pwd, "config"))
	}
	return LoadFrom(filepath.Join(filepath.Dir(ex), "../config"))
}

// LoadFrom reads dir/config.yaml, applies defaults and environment
// overrides, and validates the result.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)

	// Support environment variables with dot notation (e.g., ENGINE_POLL_INTERVAL_MS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
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

// Validate rejects settings that would stop the engine from starting.
func (c *Config) Validate() error {
	if c.Engine.PollIntervalMs <= 0 {
		return errors.Wrapf(model.ErrConfiguration, "engine.poll_interval_ms must be > 0, got %d", c.Engine.PollIntervalMs)
	}
	if c.Engine.HistoryCapacity < 1 {
		return errors.Wrapf(model.ErrConfiguration, "engine.history_capacity must be >= 1, got %d", c.Engine.HistoryCapacity)
	}
	if len(c.Engine.TrackedInstruments) == 0 {
		return errors.Wrap(model.ErrConfiguration, "engine.tracked_instruments must not be empty")
	}
	if c.Source.BaseURL == "" {
		return errors.Wrap(model.ErrConfiguration, "source.base_url is required")
	}
	return nil
}
