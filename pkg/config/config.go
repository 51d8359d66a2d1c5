// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Index, Search, Redis, Kafka, Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// IndexConfig controls index construction. Zero Workers or ShardCount means
// "size to GOMAXPROCS".
type IndexConfig struct {
	StopWords  []string `yaml:"stopWords"`
	ShardCount int      `yaml:"shardCount"`
	Workers    int      `yaml:"workers"`
}

// SearchConfig controls query execution and result presentation.
type SearchConfig struct {
	ExecutionMode string `yaml:"executionMode"`
	DefaultStatus string `yaml:"defaultStatus"`
	PageSize      int    `yaml:"pageSize"`
	RequestWindow int    `yaml:"requestWindow"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds the analytics event sink settings.
type KafkaConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Brokers    []string `yaml:"brokers"`
	Topic      string   `yaml:"topic"`
	BufferSize int      `yaml:"bufferSize"`
	BatchSize  int      `yaml:"batchSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the index cannot run with.
func (c *Config) Validate() error {
	switch c.Search.ExecutionMode {
	case "sequential", "parallel":
	default:
		return fmt.Errorf("search.executionMode: unknown mode %q", c.Search.ExecutionMode)
	}
	switch c.Search.DefaultStatus {
	case "ACTUAL", "IRRELEVANT", "BANNED", "REMOVED":
	default:
		return fmt.Errorf("search.defaultStatus: unknown status %q", c.Search.DefaultStatus)
	}
	if c.Index.ShardCount < 0 {
		return fmt.Errorf("index.shardCount must not be negative, got %d", c.Index.ShardCount)
	}
	if c.Index.Workers < 0 {
		return fmt.Errorf("index.workers must not be negative, got %d", c.Index.Workers)
	}
	if c.Search.PageSize < 0 {
		return fmt.Errorf("search.pageSize must not be negative, got %d", c.Search.PageSize)
	}
	if c.Search.RequestWindow <= 0 {
		return fmt.Errorf("search.requestWindow must be positive, got %d", c.Search.RequestWindow)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			ExecutionMode: "sequential",
			DefaultStatus: "ACTUAL",
			RequestWindow: 1440,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    []string{"localhost:9092"},
			Topic:      "search-events",
			BufferSize: 10000,
			BatchSize:  100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
		},
	}
}

// applyEnvOverrides reads SS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SS_INDEX_STOP_WORDS"); v != "" {
		cfg.Index.StopWords = strings.Fields(v)
	}
	if v := os.Getenv("SS_INDEX_SHARD_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.ShardCount = n
		}
	}
	if v := os.Getenv("SS_INDEX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.Workers = n
		}
	}
	if v := os.Getenv("SS_SEARCH_EXECUTION_MODE"); v != "" {
		cfg.Search.ExecutionMode = v
	}
	if v := os.Getenv("SS_SEARCH_DEFAULT_STATUS"); v != "" {
		cfg.Search.DefaultStatus = strings.ToUpper(v)
	}
	if v := os.Getenv("SS_SEARCH_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.PageSize = n
		}
	}
	if v := os.Getenv("SS_REDIS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = b
		}
	}
	if v := os.Getenv("SS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SS_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("SS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SS_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("SS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SS_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("SS_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
