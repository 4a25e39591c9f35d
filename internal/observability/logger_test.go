package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/storm-track-service/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_UsesConfig(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})

	assert.Same(t, logger, slog.Default())
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
