// Package config loads the process configuration from config.json,
// the way domain/config in the sister services of this codebase load
// their JSON configs, with an optional .env layer for deployment
// overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the full set of keys this system reads at startup.
type Config struct {
	ApiKey                string   `json:"api_key"`
	ApiSecret             string   `json:"api_secret"`
	Symbols               []string `json:"symbols"`
	FullFetchInterval     int      `json:"full_fetch_interval"`
	FullFetchLimit        int      `json:"full_fetch_limit"`
	StreamInterval        int      `json:"stream_interval"`
	LogToConsole          bool     `json:"log_to_console"`
	DispatcherBufferSize  int      `json:"dispatcher_buffer_size"`
	DBName                string   `json:"db_name"`
	HostName              string   `json:"host_name"`

	// NATSURL is ambient ops tooling, not one of spec.md §6's
	// documented keys: when empty (the default), the lifecycle
	// event bridge (internal/eventbus) is simply not wired up.
	NATSURL     string `json:"nats_url"`
	NATSSubject string `json:"nats_subject"`
}

func defaults() Config {
	return Config{
		FullFetchInterval:    3600,
		FullFetchLimit:       1000,
		StreamInterval:       100,
		LogToConsole:         true,
		DispatcherBufferSize: 1000,
		DBName:               "archive",
		NATSSubject:          "lobkeeper.session.events",
	}
}

// Load reads path as JSON into a Config seeded with the documented
// defaults, then applies an optional .env file and environment
// variables on top. A missing .env is not an error; a malformed
// config.json or an empty symbol list is (ConfigError, fatal at
// startup per the error handling design).
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	_ = godotenv.Load()
	applyEnvOverrides(&cfg)

	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("config: symbols must not be empty")
	}
	if cfg.StreamInterval != 100 && cfg.StreamInterval != 1000 {
		return nil, fmt.Errorf("config: stream_interval must be 100 or 1000, got %d", cfg.StreamInterval)
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.ApiKey = v
	}
	if v := os.Getenv("API_SECRET"); v != "" {
		cfg.ApiSecret = v
	}
	if v := os.Getenv("FULL_FETCH_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FullFetchInterval = n
		}
	}
	if v := os.Getenv("FULL_FETCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FullFetchLimit = n
		}
	}
	if v := os.Getenv("STREAM_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StreamInterval = n
		}
	}
	if v := os.Getenv("LOG_TO_CONSOLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogToConsole = b
		}
	}
	if v := os.Getenv("DISPATCHER_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DispatcherBufferSize = n
		}
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.DBName = v
	}
	if v := os.Getenv("HOST_NAME"); v != "" {
		cfg.HostName = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("NATS_SUBJECT"); v != "" {
		cfg.NATSSubject = v
	}
}
