package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logLine is the subset of the JSON encoder's output this package's tests
// care about.
type logLine struct {
	Level   string `json:"level"`
	Msg     string `json:"msg"`
	Session string `json:"session"`
}

// readLogLines locates the single rotating log file NewLogger wrote under
// dir and decodes each JSON line.
func readLogLines(t *testing.T, dir string) []logLine {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "expected exactly one log file in %s", dir)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var lines []logLine
	for _, raw := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if raw == "" {
			continue
		}
		var l logLine
		require.NoError(t, json.Unmarshal([]byte(raw), &l))
		lines = append(lines, l)
	}
	return lines
}

func levelsOf(lines []logLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Level
	}
	return out
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		wantLevels []string
	}{
		{"debug level records everything", "debug", []string{"debug", "info", "warn", "error"}},
		{"info level filters debug", "info", []string{"info", "warn", "error"}},
		{"warn level filters debug and info", "warn", []string{"warn", "error"}},
		{"unknown level defaults to info", "bogus", []string{"info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			log, err := NewLogger(dir, tt.level, "", Rotation{})
			require.NoError(t, err)

			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")
			log.Error("error message")

			lines := readLogLines(t, dir)
			assert.Equal(t, tt.wantLevels, levelsOf(lines))
		})
	}
}

func TestNewLoggerFormatsArgs(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "info", "", Rotation{})
	require.NoError(t, err)

	log.Info("parsed %s in %d events", "foo.cc", 3)

	lines := readLogLines(t, dir)
	require.Len(t, lines, 1)
	assert.Equal(t, "parsed foo.cc in 3 events", lines[0].Msg)
}

func TestNewLoggerTagsLinesWithSessionID(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "info", "session-42", Rotation{})
	require.NoError(t, err)

	log.Info("hello")

	lines := readLogLines(t, dir)
	require.Len(t, lines, 1)
	assert.Equal(t, "session-42", lines[0].Session)
}

func TestNewLoggerZeroRotationWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "info", "", Rotation{})
	require.NoError(t, err)
	log.Info("hello")
	readLogLines(t, dir) // sanity: the default rotation still produces a readable file
}

func TestNewLoggerEmptyDirIsError(t *testing.T) {
	_, err := NewLogger("", "warn", "", Rotation{})
	assert.Error(t, err)
}

func TestNewLoggerDirIsFileIsError(t *testing.T) {
	rootDir := t.TempDir()
	fileAsLogsDir := filepath.Join(rootDir, "thisIsAFileNotADirectory")
	require.NoError(t, os.WriteFile(fileAsLogsDir, []byte("I am a file"), 0o644))

	_, err := NewLogger(fileAsLogsDir, "debug", "", Rotation{})
	assert.Error(t, err)
}

func TestNewNopDiscardsEverything(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.Debug("debug")
		log.Info("info")
		log.Warn("warn")
		log.Error("error")
	})
}
