// Package config loads frank's settings: built-in defaults, then a JSON file
// at $XDG_CONFIG_HOME/frank/config.json, then FRANK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	LLM     LLMConfig
	Ollama  OllamaConfig
	Storage StorageConfig
	Roster  RosterConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
	// RateLimit is requests per second allowed on the AI routes.
	RateLimit float64
	RateBurst int
	// SessionIdle is how long an unused search session is kept.
	SessionIdle time.Duration
	MaxSessions int
}

type APIConfig struct {
	Token string
}

type LLMConfig struct {
	Backend string
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type OllamaConfig struct {
	BaseURL string
}

type StorageConfig struct {
	Driver          string
	DSN             string
	DataDir         string
	MonitorInterval time.Duration
}

type RosterConfig struct {
	SeedFile string
}

type LogConfig struct {
	Level string
}

// Storage drivers accepted by storage.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:        4000,
			RateLimit:   2,
			RateBurst:   5,
			SessionIdle: 30 * time.Minute,
			MaxSessions: 10000,
		},
		LLM: LLMConfig{
			Backend: "openai",
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "openai/gpt-oss-120b",
			Timeout: 20 * time.Second,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
		},
		Storage: StorageConfig{
			Driver:          DriverSQLite,
			DataDir:         defaultDataDir(),
			MonitorInterval: 60 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the config file and the environment.
// Secrets (api.token, llm.api_key) come only from the environment.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	switch c.LLM.Backend {
	case "openai", "ollama":
	default:
		errs = append(errs, fmt.Errorf("llm.backend must be openai or ollama, got %q", c.LLM.Backend))
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverNone:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be sqlite, postgres or none, got %q", c.Storage.Driver))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.SessionIdle <= 0 {
		errs = append(errs, errors.New("server.session_idle must be positive"))
	}
	if c.Server.MaxSessions <= 0 {
		errs = append(errs, errors.New("server.max_sessions must be positive"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}
	return errors.Join(errs...)
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "frank-data"
		}
	}
	return filepath.Join(dir, "frank")
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "frank", "config.json")
}
