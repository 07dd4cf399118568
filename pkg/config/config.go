// Package config loads application configuration from a YAML file with
// environment-variable overrides. It provides typed structs for the HTTP
// server, the search engine, Kafka ingestion, logging and metrics.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Search  SearchConfig  `yaml:"search"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// EngineConfig controls the in-memory index: the stop-word list and the
// number of workers used by parallel operations.
type EngineConfig struct {
	StopWords   []string `yaml:"stopWords"`
	Workers     int      `yaml:"workers"`
	DefaultMode string   `yaml:"defaultMode"`
}

// SearchConfig controls request-level limits of the search API.
type SearchConfig struct {
	BatchLimit int `yaml:"batchLimit"`
}

// KafkaConfig holds Kafka broker and topic settings for document ingestion.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	DocumentIngest string `yaml:"documentIngest"`
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
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
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
	if cfg.Engine.Workers <= 0 {
		cfg.Engine.Workers = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}

// Default returns a Config with defaults for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Engine: EngineConfig{
			StopWords:   []string{"a", "an", "and", "in", "of", "on", "the", "with"},
			Workers:     runtime.GOMAXPROCS(0),
			DefaultMode: "seq",
		},
		Search: SearchConfig{
			BatchLimit: 100,
		},
		Kafka: KafkaConfig{
			Enabled:       false,
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "search-server-group",
			Topics: KafkaTopics{
				DocumentIngest: "document-ingest",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides applies SP_* environment variables. Values that fail to
// parse are ignored.
func applyEnvOverrides(cfg *Config) {
	envInt("SP_SERVER_PORT", &cfg.Server.Port)
	envFields("SP_ENGINE_STOP_WORDS", &cfg.Engine.StopWords)
	envInt("SP_ENGINE_WORKERS", &cfg.Engine.Workers)
	envString("SP_ENGINE_DEFAULT_MODE", &cfg.Engine.DefaultMode)
	envInt("SP_SEARCH_BATCH_LIMIT", &cfg.Search.BatchLimit)
	envBool("SP_KAFKA_ENABLED", &cfg.Kafka.Enabled)
	if v := os.Getenv("SP_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	envString("SP_KAFKA_CONSUMER_GROUP", &cfg.Kafka.ConsumerGroup)
	envString("SP_LOGGING_LEVEL", &cfg.Logging.Level)
	envString("SP_LOGGING_FORMAT", &cfg.Logging.Format)
	envBool("SP_METRICS_ENABLED", &cfg.Metrics.Enabled)
	envInt("SP_METRICS_PORT", &cfg.Metrics.Port)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envFields splits the value on whitespace, so a stop-word list is written
// the same way as a query.
func envFields(key string, dst *[]string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.Fields(v)
	}
}

func envInt(key string, dst *int) {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = n
	}
}

func envBool(key string, dst *bool) {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = b
	}
}
