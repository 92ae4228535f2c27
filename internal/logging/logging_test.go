package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "datavision.log")
	l, err := New(path, false)
	require.NoError(t, err)

	l.Logger.Debug("hidden")
	l.Logger.Info("analysis complete", "options", 4)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "analysis complete", entry["msg"])
	assert.Equal(t, float64(4), entry["options"])
}

func TestNewDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l, err := New(path, true)
	require.NoError(t, err)
	l.Logger.Debug("stream opened")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stream opened")
}

func TestNewStderr(t *testing.T) {
	l, err := New("", false)
	require.NoError(t, err)
	assert.Empty(t, l.Path)
	assert.NoError(t, l.Close())
}
