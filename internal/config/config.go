package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Track source and dataset settings.
	TrackSource    string
	SourceTimeout  time.Duration
	RecencyYears   int
	ReloadInterval time.Duration
	RankPolicy     domain.RankPolicy

	QueryCacheSize int
	QueryRateLimit int

	// Kafka track publication.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("SOURCE_TIMEOUT", "30s"))
	if err != nil || sourceTimeout <= 0 {
		return nil, errors.New("invalid SOURCE_TIMEOUT")
	}

	reloadInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("RELOAD_INTERVAL", "24h"))
	if err != nil || reloadInterval < 0 {
		return nil, errors.New("invalid RELOAD_INTERVAL")
	}

	recencyYears, err := parsePositiveInt("RECENCY_WINDOW_YEARS", 15)
	if err != nil {
		return nil, err
	}

	rankPolicy, err := domain.ParseRankPolicy(os.Getenv("RANK_POLICY"))
	if err != nil {
		return nil, errors.New("invalid RANK_POLICY: must be \"distance\" or \"wind\"")
	}

	_, brokersSet := os.LookupEnv("KAFKA_BROKERS")
	kafkaEnabled := brokersSet
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		TrackSource:    sharedcfg.EnvOrDefault("TRACK_SOURCE", "data/hurdat2.txt"),
		SourceTimeout:  sourceTimeout,
		RecencyYears:   recencyYears,
		ReloadInterval: reloadInterval,
		RankPolicy:     rankPolicy,

		QueryCacheSize: parseNonNegativeInt("QUERY_CACHE_SIZE", 1000),
		QueryRateLimit: parseNonNegativeInt("QUERY_RATE_LIMIT", 120),

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "storm-tracks"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.TrackSource == "" {
		return nil, errors.New("TRACK_SOURCE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

// parseNonNegativeInt falls back to def on malformed input.
func parseNonNegativeInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
