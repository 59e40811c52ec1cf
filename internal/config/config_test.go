package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every FRANK_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "missing.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Server.RateLimit != 2 || cfg.Server.RateBurst != 5 {
		t.Errorf("rate = %v/%d, want 2/5", cfg.Server.RateLimit, cfg.Server.RateBurst)
	}
	if cfg.Server.SessionIdle != 30*time.Minute || cfg.Server.MaxSessions != 10000 {
		t.Errorf("sessions = %v/%d, want 30m/10000", cfg.Server.SessionIdle, cfg.Server.MaxSessions)
	}
	if cfg.LLM.Backend != "openai" || cfg.LLM.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.LLM.Model != "openai/gpt-oss-120b" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 20*time.Second {
		t.Errorf("LLM.Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("Ollama.BaseURL = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.MonitorInterval != time.Minute {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestMissingAPIKeyIsNotFatal(t *testing.T) {
	clearEnv(t)
	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "none.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.LLM.APIKey)
	}
}

func TestFileValues(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `{
  "server.port": 5000,
  "server.rate_limit": "0.5",
  "llm.backend": "ollama",
  "llm.model": "llama3.2",
  "llm.timeout": "45s",
  "storage.driver": "none",
  "storage.monitor_interval": "5m",
  "roster.seed_file": "/etc/frank/seed.yaml",
  "llm.api_key": "ignored-secret"
}`)

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 5000 || cfg.Server.RateLimit != 0.5 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.LLM.Backend != "ollama" || cfg.LLM.Model != "llama3.2" || cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.LLM.APIKey != "" {
		t.Error("secret read from config file")
	}
	if cfg.Storage.Driver != DriverNone || cfg.Storage.MonitorInterval != 5*time.Minute {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Roster.SeedFile != "/etc/frank/seed.yaml" {
		t.Errorf("SeedFile = %q", cfg.Roster.SeedFile)
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `{"server.port": 5000, "llm.model": "file-model"}`)

	t.Setenv("FRANK_SERVER_PORT", "6000")
	t.Setenv("FRANK_LLM_MODEL", "env-model")
	t.Setenv("FRANK_LLM_API_KEY", "env-key")
	t.Setenv("FRANK_API_TOKEN", "tok")
	t.Setenv("FRANK_STORAGE_MONITOR_INTERVAL", "10s")
	t.Setenv("FRANK_SERVER_MAX_SESSIONS", "50")

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Server.Port = %d, want 6000", cfg.Server.Port)
	}
	if cfg.LLM.Model != "env-model" || cfg.LLM.APIKey != "env-key" || cfg.API.Token != "tok" {
		t.Errorf("LLM = %+v token = %q", cfg.LLM, cfg.API.Token)
	}
	if cfg.Storage.MonitorInterval != 10*time.Second {
		t.Errorf("MonitorInterval = %v", cfg.Storage.MonitorInterval)
	}
	if cfg.Server.MaxSessions != 50 {
		t.Errorf("MaxSessions = %d, want 50", cfg.Server.MaxSessions)
	}
}

func TestEnvOverride_InvalidValueIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("FRANK_SERVER_PORT", "not-a-number")
	t.Setenv("FRANK_LLM_TIMEOUT", "soon")

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "none.json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4000 || cfg.LLM.Timeout != 20*time.Second {
		t.Errorf("invalid env applied: port %d timeout %v", cfg.Server.Port, cfg.LLM.Timeout)
	}
}

func TestInvalidFileValue(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `{"llm.timeout": "forever"}`)
	if _, err := loadWith(newFileBackend(path)); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestValidation(t *testing.T) {
	cases := map[string]string{
		"FRANK_LLM_BACKEND":         "anthropic",
		"FRANK_STORAGE_DRIVER":      "mysql",
		"FRANK_SERVER_PORT":         "70000",
		"FRANK_SERVER_MAX_SESSIONS": "0",
		"FRANK_SERVER_SESSION_IDLE": "-1m",
	}
	for env, val := range cases {
		t.Run(env, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(env, val)
			if _, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "none.json"))); err == nil {
				t.Errorf("%s=%s: expected error", env, val)
			}
		})
	}
}

func TestPostgresRequiresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("FRANK_STORAGE_DRIVER", "postgres")
	_, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "none.json")))
	if err == nil || !strings.Contains(err.Error(), "storage.dsn") {
		t.Fatalf("err = %v, want storage.dsn error", err)
	}

	t.Setenv("FRANK_STORAGE_DSN", "postgres://localhost/frank")
	if _, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "none.json"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `{not json`)
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
}

func TestSetKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "frank", "config.json")
	b := newFileBackend(path)

	if err := setKey(b, "server.port", "4100"); err != nil {
		t.Fatalf("setKey: %v", err)
	}
	if err := setKey(b, "llm.timeout", "30s"); err != nil {
		t.Fatalf("setKey: %v", err)
	}

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Server.Port != 4100 || cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("reloaded port %d timeout %v", cfg.Server.Port, cfg.LLM.Timeout)
	}
}

func TestSetKey_Errors(t *testing.T) {
	b := newFileBackend(filepath.Join(t.TempDir(), "config.json"))

	if err := setKey(b, "llm.api_key", "x"); err == nil || !strings.Contains(err.Error(), "FRANK_LLM_API_KEY") {
		t.Errorf("secret: err = %v", err)
	}
	if err := setKey(b, "no.such.key", "x"); err == nil {
		t.Error("unknown key: expected error")
	}
	if err := setKey(b, "server.port", "abc"); err == nil {
		t.Error("bad int: expected error")
	}
	if err := setKey(b, "storage.monitor_interval", "often"); err == nil {
		t.Error("bad duration: expected error")
	}
}

func TestShowAll_MasksSecrets(t *testing.T) {
	cfg := defaults()
	cfg.LLM.APIKey = "sk-very-secret"

	seen := map[string]string{}
	for _, k := range ShowAll(cfg) {
		seen[k.Key] = k.Value
		if strings.Contains(k.Value, "sk-very-secret") {
			t.Errorf("%s leaks secret", k.Key)
		}
	}
	if seen["llm.api_key"] != "(set)" || seen["api.token"] != "(unset)" {
		t.Errorf("secret display: %v / %v", seen["llm.api_key"], seen["api.token"])
	}
	if seen["server.port"] != "4000" {
		t.Errorf("server.port = %q", seen["server.port"])
	}
}

func TestValidKeys_ExcludesSecrets(t *testing.T) {
	for _, k := range ValidKeys() {
		if k == "llm.api_key" || k == "api.token" {
			t.Errorf("ValidKeys contains secret %s", k)
		}
	}
	if len(ValidKeys()) != len(specs)-2 {
		t.Errorf("ValidKeys = %d entries", len(ValidKeys()))
	}
}
