// Package config resolves client settings from defaults, TOML files, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/api"
)

// Default values.
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultTheme     = "classic"
)

var (
	validThemes     = map[string]bool{"classic": true, "neon": true, "mono": true}
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true, "logfmt": true}
)

// Config holds everything the client needs to start.
type Config struct {
	BaseURL    string        `toml:"base_url"`
	Timeout    time.Duration `toml:"timeout"`
	CSRFCookie string        `toml:"csrf_cookie"`
	CSRFHeader string        `toml:"csrf_header"`
	CSRFToken  string        `toml:"csrf_token"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`

	Theme string `toml:"theme"`
	Group bool   `toml:"group"`

	// SessionFile overrides where the CSRF token is persisted.
	SessionFile string `toml:"session_file"`

	// Files lists the config files that were read, lowest precedence first.
	Files []string `toml:"-"`
}

func setDefaults(cfg *Config) {
	cfg.BaseURL = api.DefaultBaseURL
	cfg.Timeout = api.DefaultTimeout
	cfg.CSRFCookie = api.DefaultCSRFCookie
	cfg.CSRFHeader = api.DefaultCSRFHeader
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Theme = DefaultTheme
}

// Default returns a config holding only defaults.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// API returns the HTTP adapter settings.
func (c *Config) API() api.Config {
	return api.Config{
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		CSRFHeader: c.CSRFHeader,
		CSRFCookie: c.CSRFCookie,
	}
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: must be an absolute http(s) URL", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	if !validThemes[strings.ToLower(c.Theme)] {
		return fmt.Errorf("invalid theme %q: must be one of classic, neon, mono", c.Theme)
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("invalid log_format %q: must be one of text, json, logfmt", c.LogFormat)
	}
	if strings.TrimSpace(c.CSRFHeader) == "" || strings.TrimSpace(c.CSRFCookie) == "" {
		return fmt.Errorf("csrf_header and csrf_cookie must not be empty")
	}
	return nil
}
