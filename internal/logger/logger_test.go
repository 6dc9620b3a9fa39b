package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huronportal/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInit_JSONFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")
	require.NoError(t, Init(config.LoggerConfig{Level: "debug", Format: "json", OutputPath: path}))

	WithComponent("test").Debug("hello", "answer", 42)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "test", record["component"])
	assert.EqualValues(t, 42, record["answer"])
}

func TestSetLevel_FiltersBelowThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")
	require.NoError(t, Init(config.LoggerConfig{Level: "info", Format: "json", OutputPath: path}))

	SetLevel(slog.LevelError)
	Get().Warn("dropped")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw)
}
