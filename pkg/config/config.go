// Package config loads the settings shared by the scout binaries: a YAML
// file layered over built-in defaults, then environment overrides, then
// validation. The core packages never read files; they take the plain
// structs held here.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/scout/pkg/broadcast"
	"github.com/dd0wney/scout/pkg/explorer"
	"github.com/dd0wney/scout/pkg/fetcher"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/validation"
)

// Environment variables that override file settings.
const (
	EnvPort     = "SCOUT_PORT"
	EnvDataset  = "SCOUT_DATASET"
	EnvAPIURL   = "SCOUT_API_URL"
	EnvCacheDir = "SCOUT_CACHE_DIR"
	EnvLogLevel = "LOG_LEVEL"
)

// Config is the complete configuration of a scout process.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Client    ClientConfig    `yaml:"client"`
	Explorer  explorer.Config `yaml:"explorer"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`

	// RateLimit is the sustained requests per second allowed per client
	// address; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// DatasetConfig says where the job catalog comes from and where derived
// data is cached.
type DatasetConfig struct {
	// Source is a file path, s3://bucket/key or a postgres:// URL.
	Source     string `yaml:"source"`
	CacheDir   string `yaml:"cache_dir"`
	Neighbours int    `yaml:"neighbours"`
	Workers    int    `yaml:"workers"`

	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`

	PostgresTable    string `yaml:"postgres_table"`
	PostgresMaxConns int32  `yaml:"postgres_max_conns"`
}

// ClientConfig configures the explorer's map-data client.
type ClientConfig struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// BroadcastConfig configures the frame publisher.
type BroadcastConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "INFO",
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			MaxBodyBytes:    1 << 20,
			RateLimit:       20,
			RateBurst:       40,
		},
		Dataset: DatasetConfig{
			Source:           "combined_jobs.json",
			CacheDir:         ".cache",
			Neighbours:       15,
			PostgresTable:    "jobs",
			PostgresMaxConns: 4,
		},
		Client: ClientConfig{
			APIURL:  fetcher.DefaultBaseURL,
			Timeout: fetcher.DefaultTimeout,
		},
		Explorer: explorer.DefaultConfig(),
		Broadcast: BroadcastConfig{
			Addr: broadcast.DefaultAddr,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.Decode(data); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode merges YAML into c. Keys missing from data keep their current
// values.
func (c *Config) Decode(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from the environment through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvDataset); ok && v != "" {
		c.Dataset.Source = v
	}
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.Client.APIURL = strings.TrimRight(v, "/")
	}
	if v, ok := lookup(EnvCacheDir); ok && v != "" {
		c.Dataset.CacheDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = strings.ToUpper(v)
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	return errors.Join(
		validation.NewConfigValidator("Config").
			OneOf("LogLevel", strings.ToUpper(strings.TrimSpace(c.LogLevel)), logging.LevelNames).
			Validate(),
		validation.NewConfigValidator("Server").
			RangeInt("Port", c.Server.Port, 1, 65535).
			MinDuration("ReadTimeout", c.Server.ReadTimeout, time.Second).
			MinDuration("WriteTimeout", c.Server.WriteTimeout, time.Second).
			NonNegativeDuration("ShutdownTimeout", c.Server.ShutdownTimeout).
			Positive("MaxBodyBytes", int(c.Server.MaxBodyBytes)).
			NonNegativeFloat("RateLimit", c.Server.RateLimit).
			When(c.Server.RateLimit > 0, func(v *validation.ConfigValidator) {
				v.Positive("RateBurst", c.Server.RateBurst)
			}).
			Validate(),
		validation.NewConfigValidator("Dataset").
			Required("Source", c.Dataset.Source).
			RangeInt("Neighbours", c.Dataset.Neighbours, 1, 100).
			RangeInt("Workers", c.Dataset.Workers, 0, 256).
			When(strings.HasPrefix(c.Dataset.Source, "postgres"), func(v *validation.ConfigValidator) {
				v.Required("PostgresTable", c.Dataset.PostgresTable).
					Positive("PostgresMaxConns", int(c.Dataset.PostgresMaxConns))
			}).
			Validate(),
		validation.NewConfigValidator("Client").
			Required("APIURL", c.Client.APIURL).
			MinDuration("Timeout", c.Client.Timeout, 100*time.Millisecond).
			Validate(),
		c.Explorer.Validate(),
		validation.NewConfigValidator("Broadcast").
			When(c.Broadcast.Enabled, func(v *validation.ConfigValidator) {
				v.Required("Addr", c.Broadcast.Addr)
			}).
			Validate(),
	)
}
