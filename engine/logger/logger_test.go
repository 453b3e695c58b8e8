package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestSetAndNamed(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))

	Named("loader").Info("parsed", zap.Int("meshes", 2))
	Warn("frame skipped")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "loader", entries[0].LoggerName)
	assert.Equal(t, int64(2), entries[0].ContextMap()["meshes"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestSetNilRestoresNop(t *testing.T) {
	Set(nil)
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() { Info("ignored") })
}

func TestInitWithFileConfig(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	path := filepath.Join(t.TempDir(), "glbview.log")
	require.NoError(t, InitWithFileConfig("debug", DefaultFileConfig(path), false))

	Debug("written to file")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
