package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesTimestampedLogFile(t *testing.T) {
	dir := t.TempDir()

	log, path, err := New(Options{Dir: dir, Level: "info", Format: "console"})
	require.NoError(t, err)

	log.Info("run started", zap.String("run_id", "run-1"))
	require.NoError(t, log.Sync())

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "log_"), "log file name %q", base)
	assert.True(t, strings.HasSuffix(base, ".log"), "log file name %q", base)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run started")
	assert.Contains(t, string(data), "run-1")
}

func TestNewJSONFormat(t *testing.T) {
	dir := t.TempDir()

	log, path, err := New(Options{Dir: dir, Level: "info", Format: "json"})
	require.NoError(t, err)

	log.Info("run started")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"run started"`)
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	_, _, err := New(Options{Dir: dir, Level: "info", Format: "console"})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	log, path, err := New(Options{Dir: dir, Level: "warn", Format: "console"})
	require.NoError(t, err)

	log.Info("quiet")
	log.Warn("loud")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Options{Dir: t.TempDir(), Level: "trace"})
	assert.Error(t, err)
}
