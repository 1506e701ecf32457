package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"":        log.InfoLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestParseFormatter(t *testing.T) {
	assert.Equal(t, log.JSONFormatter, ParseFormatter("json"))
	assert.Equal(t, log.LogfmtFormatter, ParseFormatter("logfmt"))
	assert.Equal(t, log.TextFormatter, ParseFormatter("text"))
	assert.Equal(t, log.TextFormatter, ParseFormatter(""))
}

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "warn", Format: "json"})

	l.Info("hidden")
	l.Warn("remove failed", "id", "5")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "remove failed", line["msg"])
	assert.Equal(t, "5", line["id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tada.log")
	l, f, err := OpenFile(path, Options{Level: "debug"})
	require.NoError(t, err)
	l.Debug("hello", "n", 1)
	require.NoError(t, f.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello")
}
