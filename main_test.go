package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrxk/combo/internal/logging"
)

func TestParseArgsDefaults(t *testing.T) {
	a, err := parseArgs(comboUsage, []string{"items.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "items.yaml", a.Path)
	assert.Equal(t, time.Duration(0), a.Delay)
	assert.False(t, a.Follow)
	assert.Equal(t, "combo.log", a.LogPath)
}

func TestParseArgs(t *testing.T) {
	a, err := parseArgs(comboUsage, []string{"--delay=250ms", "-f", "--log", "out.log", "items.json"})
	require.NoError(t, err)
	assert.Equal(t, "items.json", a.Path)
	assert.Equal(t, 250*time.Millisecond, a.Delay)
	assert.True(t, a.Follow)
	assert.Equal(t, "out.log", a.LogPath)
}

func TestParseArgsBadDelay(t *testing.T) {
	_, err := parseArgs(comboUsage, []string{"--delay=soon", "items.yaml"})
	assert.ErrorContains(t, err, "--delay")
}

func TestParseArgsMissingPath(t *testing.T) {
	_, err := parseArgs(comboUsage, []string{})
	assert.Error(t, err)
}

func TestOpenLog(t *testing.T) {
	t.Cleanup(func() { logging.SetOutput(io.Discard) })
	path := filepath.Join(t.TempDir(), "combo.log")

	logFile := openLog(path)
	logging.NewLogger("main").Info("started")
	require.NoError(t, logFile.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
}

func TestOpenLogUnavailableDiscards(t *testing.T) {
	t.Cleanup(func() { logging.SetOutput(io.Discard) })
	path := filepath.Join(t.TempDir(), "missing", "combo.log")

	logFile := openLog(path)
	require.NotNil(t, logFile)
	assert.NoError(t, logFile.Close())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
