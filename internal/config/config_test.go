package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envListenAddr, envDBPath, envLogLevel, envGridCols, envGridRows,
		envMaxConcurrent, envMinIntervalMS, envProvider, envBaseURL,
		envAPIKey, envModel, envTemperature, envRequestTimeout,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.DBPath != defaultDBPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, defaultDBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if cfg.GridCols != defaultGridSize || cfg.GridRows != defaultGridSize {
		t.Errorf("grid = %dx%d, want %dx%d", cfg.GridCols, cfg.GridRows, defaultGridSize, defaultGridSize)
	}
	if cfg.MaxConcurrent != defaultMaxConcurrent {
		t.Errorf("MaxConcurrent = %d, want %d", cfg.MaxConcurrent, defaultMaxConcurrent)
	}
	if cfg.MinInterval != defaultMinIntervalMS*time.Millisecond {
		t.Errorf("MinInterval = %v, want %v", cfg.MinInterval, defaultMinIntervalMS*time.Millisecond)
	}
	if cfg.Provider != defaultProvider {
		t.Errorf("Provider = %q, want %q", cfg.Provider, defaultProvider)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(envListenAddr, ":9090")
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envGridCols, "12")
	t.Setenv(envGridRows, "6")
	t.Setenv(envMaxConcurrent, "2")
	t.Setenv(envMinIntervalMS, "500")
	t.Setenv(envAPIKey, "sk-test")
	t.Setenv(envModel, "local-model")
	t.Setenv(envTemperature, "0.2")
	t.Setenv(envRequestTimeout, "5s")

	cfg := Load()

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.ListenAddr)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.GridCols != 12 || cfg.GridRows != 6 {
		t.Errorf("grid = %dx%d, want 12x6", cfg.GridCols, cfg.GridRows)
	}
	if cfg.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent = %d, want 2", cfg.MaxConcurrent)
	}
	if cfg.MinInterval != 500*time.Millisecond {
		t.Errorf("MinInterval = %v, want 500ms", cfg.MinInterval)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", cfg.APIKey)
	}
	if cfg.Model != "local-model" {
		t.Errorf("Model = %q, want local-model", cfg.Model)
	}
	if cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Temperature)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(envGridCols, "many")
	t.Setenv(envMinIntervalMS, "soon")
	t.Setenv(envTemperature, "warm")
	t.Setenv(envRequestTimeout, "whenever")

	cfg := Load()

	if cfg.GridCols != defaultGridSize {
		t.Errorf("GridCols = %d, want default %d", cfg.GridCols, defaultGridSize)
	}
	if cfg.MinInterval != defaultMinIntervalMS*time.Millisecond {
		t.Errorf("MinInterval = %v, want default", cfg.MinInterval)
	}
	if cfg.Temperature != defaultTemperature {
		t.Errorf("Temperature = %v, want default", cfg.Temperature)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want default", cfg.RequestTimeout)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("visible")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not a single JSON entry: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "visible" {
		t.Errorf("msg = %v, want visible", entry["msg"])
	}
}
