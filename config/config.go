// Package config loads service configuration from an optional YAML file
// with environment-variable overrides and sane defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort        = "8080"
	defaultMaxUploadMB = 64
)

// Config holds the resolved service configuration.
type Config struct {
	Port           string
	LogLevel       slog.Level
	MaxUploadBytes int64
	MetricsEnabled bool
}

type fileConfig struct {
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"log_level"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
	Metrics     *bool  `yaml:"metrics"`
}

// Load resolves configuration in precedence order: defaults, then the YAML
// file at path (skipped when path is empty or the file does not exist), then
// environment variables PORT, LOG_LEVEL, MAX_UPLOAD_MB, and METRICS.
func Load(path string) (Config, error) {
	cfg := Config{
		Port:           defaultPort,
		LogLevel:       slog.LevelInfo,
		MaxUploadBytes: defaultMaxUploadMB << 20,
		MetricsEnabled: true,
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			var fc fileConfig
			if err := yaml.Unmarshal(b, &fc); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
			if fc.Port != "" {
				cfg.Port = fc.Port
			}
			if fc.LogLevel != "" {
				cfg.LogLevel = parseLevel(fc.LogLevel)
			}
			if fc.MaxUploadMB > 0 {
				cfg.MaxUploadBytes = int64(fc.MaxUploadMB) << 20
			}
			if fc.Metrics != nil {
				cfg.MetricsEnabled = *fc.Metrics
			}
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLevel(v)
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		if mb, err := strconv.Atoi(v); err == nil && mb > 0 {
			cfg.MaxUploadBytes = int64(mb) << 20
		}
	}
	if v := os.Getenv("METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MetricsEnabled = b
		}
	}

	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
