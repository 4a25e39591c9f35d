package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data/hurdat2.txt", cfg.TrackSource)
	assert.Equal(t, 30*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 15, cfg.RecencyYears)
	assert.Equal(t, 24*time.Hour, cfg.ReloadInterval)
	assert.Equal(t, domain.RankByDistance, cfg.RankPolicy)
	assert.Equal(t, 1000, cfg.QueryCacheSize)
	assert.Equal(t, 120, cfg.QueryRateLimit)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "storm-tracks", cfg.KafkaTopic)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("TRACK_SOURCE", "s3://noaa-archive/hurdat2/hurdat2-1851-2023.txt")
	t.Setenv("SOURCE_TIMEOUT", "1m")
	t.Setenv("RECENCY_WINDOW_YEARS", "30")
	t.Setenv("RELOAD_INTERVAL", "0s")
	t.Setenv("RANK_POLICY", "wind")
	t.Setenv("QUERY_CACHE_SIZE", "0")
	t.Setenv("QUERY_RATE_LIMIT", "10")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-tracks")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "s3://noaa-archive/hurdat2/hurdat2-1851-2023.txt", cfg.TrackSource)
	assert.Equal(t, time.Minute, cfg.SourceTimeout)
	assert.Equal(t, 30, cfg.RecencyYears)
	assert.Zero(t, cfg.ReloadInterval)
	assert.Equal(t, domain.RankByWind, cfg.RankPolicy)
	assert.Zero(t, cfg.QueryCacheSize)
	assert.Equal(t, 10, cfg.QueryRateLimit)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-tracks", cfg.KafkaTopic)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidSourceTimeout(t *testing.T) {
	t.Setenv("SOURCE_TIMEOUT", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_TIMEOUT")
}

func TestLoad_InvalidReloadInterval(t *testing.T) {
	t.Setenv("RELOAD_INTERVAL", "-1h")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RELOAD_INTERVAL")
}

func TestLoad_InvalidRecencyYears(t *testing.T) {
	for _, v := range []string{"0", "-3", "fifteen"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("RECENCY_WINDOW_YEARS", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "RECENCY_WINDOW_YEARS")
		})
	}
}

func TestLoad_InvalidRankPolicy(t *testing.T) {
	t.Setenv("RANK_POLICY", "pressure")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RANK_POLICY")
}

func TestLoad_RankPolicyCaseInsensitive(t *testing.T) {
	t.Setenv("RANK_POLICY", " Wind ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, domain.RankByWind, cfg.RankPolicy)
}

func TestLoad_MalformedCacheSizeFallsBack(t *testing.T) {
	t.Setenv("QUERY_CACHE_SIZE", "lots")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.QueryCacheSize)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaEnabledWithDefaultBroker(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
}
