package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stolasapp/whisper/internal/config"
)

func TestToLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToLogLevel(tt.in), tt.in)
	}
}

func TestInitSlog(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.LogLevel = config.LogLevelWarn
	logger := InitSlog(cfg)
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}
