// Package config loads prothought's configuration from the environment.
//
// There is no config file: the database path and the LLM boundary are the
// only tunables, and a handful of PROTHOUGHT_* variables cover them.
// Load is called once in main; the resulting struct is passed down
// explicitly so no package reads the environment on its own.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds everything prothought needs at startup.
type Config struct {
	DBPath string // SQLite file, default ~/.prothought.db

	LLMBaseURL string        // OpenAI-compatible base URL
	LLMModel   string        // model name, empty = auto-resolve
	LLMAPIKey  string        // optional bearer credential
	LLMTimeout time.Duration // completion request timeout

	LogLevel string // "debug" | "info" | "warn" | "error", used by serve
}

// Load builds a Config from environment variables with sensible defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:     getenv("PROTHOUGHT_DB_PATH", filepath.Join(home, ".prothought.db")),
		LLMBaseURL: getenv("PROTHOUGHT_LLM_BASE_URL", ""),
		LLMModel:   getenv("PROTHOUGHT_LLM_MODEL", ""),
		LLMAPIKey:  getenv("PROTHOUGHT_LLM_API_KEY", ""),
		LLMTimeout: getenvDuration("PROTHOUGHT_LLM_TIMEOUT", 60*time.Second),
		LogLevel:   getenv("PROTHOUGHT_LOG_LEVEL", "info"),
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
