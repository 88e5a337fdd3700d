package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gutenshelf.log")

	logger := New(Config{Level: "warn", Format: "auto", Output: path})
	logger.Info().Msg("hidden")
	logger.Warn().Str("cursor", "p2").Msg("shown")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(content)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"cursor":"p2"`)
}

func TestNewConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")

	logger := New(Config{Level: "info", Format: "console", Output: path, NoColor: true})
	logger.Info().Msg("hello")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "INF hello")
}

func TestNewDiscard(t *testing.T) {
	logger := New(Config{Level: "debug", Output: "discard"})
	assert.NotPanics(t, func() { logger.Debug().Msg("nothing") })
}
