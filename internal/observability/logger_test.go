package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"zappem.net/pub/kinematics/musclearm/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.LoggerConfig{Level: "debug", Format: "json"}, zapcore.AddSync(&buf))
	l.Debug("recomputed arm", zap.Float64("shoulder", 30))
	require.NoError(t, Sync(l))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "armplot", entry["logger"])
	assert.Equal(t, "recomputed arm", entry["msg"])
	assert.Equal(t, 30.0, entry["shoulder"])
}

func TestNewLevelFallback(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.LoggerConfig{Level: "chatty", Format: "console"}, zapcore.AddSync(&buf))
	l.Debug("hidden")
	l.Info("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNewLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armplot.log")
	var console bytes.Buffer
	l := New(config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&console))
	l.Info("arm ready", zap.String("title", "Arm"))
	require.NoError(t, Sync(l))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(b))
	assert.True(t, strings.HasPrefix(line, "{"), "file output is JSON: %s", line)
	assert.Contains(t, line, `"title":"Arm"`)
	assert.Contains(t, console.String(), "arm ready")
}
