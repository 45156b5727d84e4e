// Package config loads application configuration from the environment and
// builds the shared structured logger.
package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr     = ":8080"
	defaultDBPath         = "textlife.db"
	defaultGridSize       = 8
	defaultMaxConcurrent  = 4
	defaultMinIntervalMS  = 250
	defaultProvider       = "openai"
	defaultModel          = "gpt-4o-mini"
	defaultTemperature    = 0.7
	defaultRequestTimeout = 30 * time.Second

	envListenAddr     = "TEXTLIFE_LISTEN_ADDR"
	envDBPath         = "TEXTLIFE_DB_PATH"
	envLogLevel       = "TEXTLIFE_LOG_LEVEL"
	envGridCols       = "TEXTLIFE_GRID_COLS"
	envGridRows       = "TEXTLIFE_GRID_ROWS"
	envMaxConcurrent  = "TEXTLIFE_MAX_CONCURRENT"
	envMinIntervalMS  = "TEXTLIFE_MIN_INTERVAL_MS"
	envProvider       = "TEXTLIFE_PROVIDER"
	envBaseURL        = "TEXTLIFE_OPENAI_BASE_URL"
	envAPIKey         = "TEXTLIFE_OPENAI_API_KEY"
	envModel          = "TEXTLIFE_MODEL"
	envTemperature    = "TEXTLIFE_TEMPERATURE"
	envRequestTimeout = "TEXTLIFE_REQUEST_TIMEOUT"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   slog.Level

	GridCols int
	GridRows int

	// Admission gate: at most MaxConcurrent calls in flight, consecutive
	// call starts spaced by MinInterval.
	MaxConcurrent int
	MinInterval   time.Duration

	Provider       string
	BaseURL        string
	APIKey         string
	Model          string
	Temperature    float64
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults. Out-of-range gate values are left to the gate's own clamping.
func Load() Config {
	cfg := Config{
		ListenAddr:     defaultListenAddr,
		DBPath:         defaultDBPath,
		LogLevel:       slog.LevelInfo,
		GridCols:       defaultGridSize,
		GridRows:       defaultGridSize,
		MaxConcurrent:  defaultMaxConcurrent,
		MinInterval:    defaultMinIntervalMS * time.Millisecond,
		Provider:       defaultProvider,
		Model:          defaultModel,
		Temperature:    defaultTemperature,
		RequestTimeout: defaultRequestTimeout,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	cfg.GridCols = intEnv(envGridCols, cfg.GridCols)
	cfg.GridRows = intEnv(envGridRows, cfg.GridRows)
	cfg.MaxConcurrent = intEnv(envMaxConcurrent, cfg.MaxConcurrent)
	if ms := intEnv(envMinIntervalMS, defaultMinIntervalMS); ms != defaultMinIntervalMS {
		cfg.MinInterval = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv(envProvider); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv(envBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(envAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(envModel); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv(envTemperature); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv(envRequestTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}

	return cfg
}

// intEnv parses an integer environment variable, returning defaultVal when
// unset or malformed.
func intEnv(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
