package logger

import (
	"os"
	"path/filepath"
	"testing"

	"fieldops-app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "level %q", tt.in)
	}

	_, err := parseLevel("loud")
	assert.Error(t, err)
}

func TestInit_WritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := Init(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	zap.L().Info("week submitted", zap.String("week_id", "abc"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"week_id":"abc"`)
}
