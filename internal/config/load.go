package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	userConfigName = "config.toml"
	appDirName     = "tada"
)

var projectConfigNames = []string{"tada.toml", ".tada.toml"}

// Load resolves configuration in priority order:
// 1. Defaults
// 2. An explicit file (-config flag or TADA_CONFIG), or else the user file
// ($XDG_CONFIG_HOME/tada/config.toml, then ~/.tada/config.toml) followed by
// the project file (tada.toml or .tada.toml in the working directory)
// 3. Environment variables
// 4. Flags registered on fs and parsed from args
//
// After Load returns, fs.Args() holds the remaining arguments.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Default()

	if explicit := explicitConfigFile(args); explicit != "" {
		if err := loadConfigFile(cfg, explicit); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", explicit, err)
		}
	} else {
		for _, path := range []string{findUserConfigFile(), findProjectConfigFile()} {
			if path == "" {
				continue
			}
			if err := loadConfigFile(cfg, path); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if fs != nil {
		registerFlags(cfg, fs)
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("parsing flags: %w", err)
		}
	}

	cfg.LogFile = expandPath(cfg.LogFile)
	cfg.SessionFile = expandPath(cfg.SessionFile)
	cfg.Theme = strings.ToLower(cfg.Theme)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

// explicitConfigFile finds -config/--config among the root flags, falling
// back to TADA_CONFIG. Scanning stops at the first non-flag argument.
func explicitConfigFile(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" || !strings.HasPrefix(a, "-") {
			break
		}
		name := strings.TrimLeft(a, "-")
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("TADA_CONFIG")
}

func findUserConfigFile() string {
	var candidates []string
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, appDirName, userConfigName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".tada", userConfigName))
	}
	return firstExisting(candidates)
}

func findProjectConfigFile() string {
	return firstExisting(projectConfigNames)
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TADA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TADA_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("TADA_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("TADA_CSRF_COOKIE"); v != "" {
		cfg.CSRFCookie = v
	}
	if v := os.Getenv("TADA_CSRF_HEADER"); v != "" {
		cfg.CSRFHeader = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TADA_GROUP"); v != "" {
		cfg.Group = boolFromString(v)
	}
	if v := os.Getenv("TADA_SESSION_FILE"); v != "" {
		cfg.SessionFile = v
	}
	return nil
}

// parseTimeout accepts a Go duration ("10s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.New("expected a duration like 10s or a number of seconds")
	}
	return d, nil
}

func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func registerFlags(cfg *Config, fs *flag.FlagSet) {
	// parsed here only so the flag set accepts it; the file was read above
	fs.String("config", "", "path to a TOML config file")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the todo API")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	fs.StringVar(&cfg.CSRFToken, "csrf-token", cfg.CSRFToken, "CSRF token to send until the server sets its cookie")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text, json, logfmt")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "color theme: classic, neon, mono")
	fs.BoolVar(&cfg.Group, "group", cfg.Group, "group output by pending/done")
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], string(filepath.Separator)))
}
