// Package config loads and validates collector configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	RIDB      RIDBConfig      `mapstructure:"ridb"`
	Collector CollectorConfig `mapstructure:"collector"`
	DB        DBConfig        `mapstructure:"db"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the operational HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// RIDBConfig governs access to the RIDB API.
type RIDBConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	MaxRetries        int    `mapstructure:"max_retries"`
	RateIntervalMs    int    `mapstructure:"rate_interval_ms"`
	RateLimitWaitSecs int    `mapstructure:"rate_limit_wait_seconds"`
}

// CollectorConfig governs the collection pipeline.
type CollectorConfig struct {
	CollectionType string   `mapstructure:"collection_type"`
	PageSize       int      `mapstructure:"page_size"`
	BatchSize      int      `mapstructure:"batch_size"`
	Keywords       []string `mapstructure:"keywords"`
	DryRun         bool     `mapstructure:"dry_run"`
}

// DBConfig controls access to the relational database. An empty DSN runs
// the collector against the in-memory stores.
type DBConfig struct {
	DSN                string `mapstructure:"dsn"`
	CampsiteTable      string `mapstructure:"campsite_table"`
	MaxConns           int32  `mapstructure:"max_conns"`
	MinConns           int32  `mapstructure:"min_conns"`
	MaxConnLifetimeMin int    `mapstructure:"max_conn_lifetime_minutes"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COLLECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("ridb.base_url", "https://ridb.recreation.gov/api/v1")
	// Empty defaults register the keys so AutomaticEnv can fill them.
	v.SetDefault("ridb.api_key", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("ridb.timeout_seconds", 30)
	v.SetDefault("ridb.max_retries", 3)
	v.SetDefault("ridb.rate_interval_ms", 1000)
	v.SetDefault("ridb.rate_limit_wait_seconds", 5)
	v.SetDefault("collector.collection_type", "campsites")
	v.SetDefault("collector.page_size", 50)
	v.SetDefault("collector.batch_size", 25)
	v.SetDefault("collector.dry_run", false)
	v.SetDefault("db.campsite_table", "ridb_campsites")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.RIDB.APIKey == "" {
		return fmt.Errorf("ridb.api_key is required")
	}
	if c.RIDB.TimeoutSeconds <= 0 {
		return fmt.Errorf("ridb.timeout_seconds must be > 0")
	}
	if c.RIDB.RateIntervalMs <= 0 {
		return fmt.Errorf("ridb.rate_interval_ms must be > 0")
	}
	if c.Collector.PageSize <= 0 {
		return fmt.Errorf("collector.page_size must be > 0")
	}
	if c.Collector.BatchSize <= 0 {
		return fmt.Errorf("collector.batch_size must be > 0")
	}
	if !c.Collector.DryRun && c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required unless collector.dry_run is set")
	}
	return nil
}

// RateInterval is the minimum spacing between RIDB requests.
func (c Config) RateInterval() time.Duration {
	return time.Duration(c.RIDB.RateIntervalMs) * time.Millisecond
}

// RequestTimeout is the per-request budget for RIDB calls.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RIDB.TimeoutSeconds) * time.Second
}

// RateLimitWait is the fallback delay after a throttled response that
// carries no Retry-After header.
func (c Config) RateLimitWait() time.Duration {
	return time.Duration(c.RIDB.RateLimitWaitSecs) * time.Second
}

// MaxConnLifetime converts the pool lifetime knob into a duration.
func (c Config) MaxConnLifetime() time.Duration {
	return time.Duration(c.DB.MaxConnLifetimeMin) * time.Minute
}
