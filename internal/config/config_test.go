package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME, XDG_CONFIG_HOME and the working directory at empty
// temp dirs and clears every TADA_ variable.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range []string{"TADA_CONFIG", "TADA_BASE_URL", "TADA_TIMEOUT", "TADA_CSRF_COOKIE", "TADA_CSRF_HEADER",
		"TADA_LOG_LEVEL", "TADA_LOG_FORMAT", "TADA_LOG_FILE", "TADA_THEME", "TADA_GROUP", "TADA_SESSION_FILE"} {
		t.Setenv(k, "")
	}
	work := t.TempDir()
	t.Chdir(work)
	return home
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "csrftoken", cfg.CSRFCookie)
	assert.Equal(t, "X-CSRFToken", cfg.CSRFHeader)
	assert.Equal(t, "classic", cfg.Theme)
	assert.Empty(t, cfg.Files)

	a := cfg.API()
	assert.Equal(t, cfg.BaseURL, a.BaseURL)
	assert.Equal(t, cfg.Timeout, a.Timeout)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "tada", "config.toml"), `
base_url = "http://user.example:8000"
timeout = "5s"
theme = "neon"
log_level = "info"
`)
	writeFile(t, "tada.toml", `
base_url = "http://project.example:8000"
`)
	t.Setenv("TADA_THEME", "mono")

	fs := newFlagSet()
	cfg, err := Load(fs, []string{"-log-level", "debug", "ls"})
	require.NoError(t, err)

	assert.Equal(t, "http://project.example:8000", cfg.BaseURL, "project file beats user file")
	assert.Equal(t, 5*time.Second, cfg.Timeout, "user file value survives when not overridden")
	assert.Equal(t, "mono", cfg.Theme, "env beats files")
	assert.Equal(t, "debug", cfg.LogLevel, "flags beat everything")
	assert.Equal(t, []string{"ls"}, fs.Args())
	assert.Len(t, cfg.Files, 2)
}

func TestLoad_ExplicitFileSkipsDiscovery(t *testing.T) {
	isolate(t)
	writeFile(t, "tada.toml", `theme = "neon"`)
	explicit := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, explicit, `base_url = "https://api.example.com"`)

	cfg, err := Load(newFlagSet(), []string{"-config", explicit, "print"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "classic", cfg.Theme)
	assert.Equal(t, []string{explicit}, cfg.Files)

	cfg, err = Load(newFlagSet(), []string{"--config=" + explicit})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
}

func TestLoad_Env(t *testing.T) {
	home := isolate(t)
	t.Setenv("TADA_BASE_URL", "https://todo.example.com")
	t.Setenv("TADA_TIMEOUT", "3")
	t.Setenv("TADA_GROUP", "yes")
	t.Setenv("TADA_LOG_FILE", "~/tada.log")

	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://todo.example.com", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.True(t, cfg.Group)
	assert.Equal(t, filepath.Join(home, "tada.log"), cfg.LogFile)

	t.Setenv("TADA_TIMEOUT", "soon")
	_, err = Load(newFlagSet(), nil)
	assert.ErrorContains(t, err, "TADA_TIMEOUT")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "relative url", args: []string{"-base-url", "localhost:8000"}, want: "base_url"},
		{name: "zero timeout", args: []string{"-timeout", "0s"}, want: "timeout"},
		{name: "unknown theme", args: []string{"-theme", "pastel"}, want: "theme"},
		{name: "unknown level", args: []string{"-log-level", "loud"}, want: "log_level"},
		{name: "unknown format", args: []string{"-log-format", "xml"}, want: "log_format"},
		{name: "unknown flag", args: []string{"-nope"}, want: "parsing flags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(newFlagSet(), tt.args)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_BrokenFile(t *testing.T) {
	isolate(t)
	writeFile(t, "tada.toml", `base_url = `)
	_, err := Load(newFlagSet(), nil)
	assert.ErrorContains(t, err, "tada.toml")
}
