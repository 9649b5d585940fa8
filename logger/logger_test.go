package logger

import (
	"os"
	"path/filepath"
	"testing"

	"flowwatch/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}

func TestNew_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "flowwatch.log")

	log, err := New(config.LogConfig{
		Level:       "debug",
		Format:      "json",
		Environment: "prod",
		OutputFile:  path,
	})
	require.NoError(t, err)

	log.Info("sample accepted")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"sample accepted"`)
	assert.Contains(t, string(data), `"service":"flowwatch"`)
}

func TestNew_DefaultLevel(t *testing.T) {
	log, err := New(config.LogConfig{})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel), "debug is off by default")
}
