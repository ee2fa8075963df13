package config

import (
	"os"
	"testing"
	"time"
)

// helper to clear all NVPRIME_ env vars before each test
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"NVPRIME_API_KEY",
		"NVPRIME_AGENT_ID",
		"NVPRIME_NODE_NAME",
		"NVPRIME_BACKEND_URL",
		"NVPRIME_SNAPSHOT_INTERVAL",
		"NVPRIME_POLL_INTERVAL",
		"NVPRIME_MAX_RETRIES",
		"NVPRIME_REQUEST_TIMEOUT",
		"NVPRIME_HEALTH_PORT",
		"NVPRIME_AGENT_VERSION",
		"NVPRIME_SMI_BINARY",
		"NVPRIME_QUERY_TIMEOUT",
		"NVPRIME_ALLOW_INSECURE",
		"NVPRIME_DEBUG_ENDPOINTS",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("NVPRIME_API_KEY", "test-key")

	cfg := Load()

	if cfg.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "test-key")
	}
	if cfg.AgentID == "" {
		t.Error("AgentID should be auto-generated when empty")
	}
	if cfg.NodeName == "" {
		t.Error("NodeName should fall back to the hostname")
	}
	if cfg.BackendURL != "https://api.nvprime.dev" {
		t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, "https://api.nvprime.dev")
	}
	if cfg.SnapshotInterval != 60*time.Second {
		t.Errorf("SnapshotInterval = %v, want 60s", cfg.SnapshotInterval)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Errorf("PollInterval = %v, want 15s", cfg.PollInterval)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.HealthPort != 8080 {
		t.Errorf("HealthPort = %d, want 8080", cfg.HealthPort)
	}
	if cfg.SMIBinary != "nvidia-smi" {
		t.Errorf("SMIBinary = %q, want nvidia-smi", cfg.SMIBinary)
	}
	if cfg.QueryTimeout != 10*time.Second {
		t.Errorf("QueryTimeout = %v, want 10s", cfg.QueryTimeout)
	}
	if cfg.AllowInsecure {
		t.Error("AllowInsecure should default to false")
	}
	if cfg.DebugEndpoints {
		t.Error("DebugEndpoints should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NVPRIME_API_KEY", "k")
	t.Setenv("NVPRIME_AGENT_ID", "agent-42")
	t.Setenv("NVPRIME_NODE_NAME", "gpu-host-9")
	t.Setenv("NVPRIME_BACKEND_URL", "https://staging.nvprime.dev")
	t.Setenv("NVPRIME_SNAPSHOT_INTERVAL", "2m")
	t.Setenv("NVPRIME_POLL_INTERVAL", "5s")
	t.Setenv("NVPRIME_MAX_RETRIES", "2")
	t.Setenv("NVPRIME_HEALTH_PORT", "9090")
	t.Setenv("NVPRIME_SMI_BINARY", "/usr/local/bin/nvidia-smi")
	t.Setenv("NVPRIME_ALLOW_INSECURE", "true")
	t.Setenv("NVPRIME_DEBUG_ENDPOINTS", "true")

	cfg := Load()

	if cfg.AgentID != "agent-42" {
		t.Errorf("AgentID = %q", cfg.AgentID)
	}
	if cfg.NodeName != "gpu-host-9" {
		t.Errorf("NodeName = %q", cfg.NodeName)
	}
	if cfg.BackendURL != "https://staging.nvprime.dev" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.SnapshotInterval != 2*time.Minute {
		t.Errorf("SnapshotInterval = %v, want 2m", cfg.SnapshotInterval)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.MaxRetries)
	}
	if cfg.HealthPort != 9090 {
		t.Errorf("HealthPort = %d, want 9090", cfg.HealthPort)
	}
	if cfg.SMIBinary != "/usr/local/bin/nvidia-smi" {
		t.Errorf("SMIBinary = %q", cfg.SMIBinary)
	}
	if !cfg.AllowInsecure {
		t.Error("AllowInsecure should be true")
	}
	if !cfg.DebugEndpoints {
		t.Error("DebugEndpoints should be true")
	}
}

func TestLoad_DurationAsSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("NVPRIME_API_KEY", "k")
	t.Setenv("NVPRIME_SNAPSHOT_INTERVAL", "90")

	cfg := Load()
	if cfg.SnapshotInterval != 90*time.Second {
		t.Errorf("SnapshotInterval = %v, want 90s from bare integer", cfg.SnapshotInterval)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("NVPRIME_API_KEY", "k")
	t.Setenv("NVPRIME_SNAPSHOT_INTERVAL", "not-a-duration")
	t.Setenv("NVPRIME_MAX_RETRIES", "lots")
	t.Setenv("NVPRIME_ALLOW_INSECURE", "yep")

	cfg := Load()
	if cfg.SnapshotInterval != 60*time.Second {
		t.Errorf("SnapshotInterval = %v, want default on garbage", cfg.SnapshotInterval)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want default on garbage", cfg.MaxRetries)
	}
	if cfg.AllowInsecure {
		t.Error("AllowInsecure should fall back to false on garbage")
	}
}

func validConfig() Config {
	return Config{
		APIKey:           "k",
		AgentID:          "agent-1",
		NodeName:         "host",
		BackendURL:       "https://api.nvprime.dev",
		SnapshotInterval: 60 * time.Second,
		PollInterval:     15 * time.Second,
		MaxRetries:       5,
		RequestTimeout:   30 * time.Second,
		HealthPort:       8080,
		SMIBinary:        "nvidia-smi",
		QueryTimeout:     10 * time.Second,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestValidate_InsecureURL(t *testing.T) {
	cfg := validConfig()
	cfg.BackendURL = "http://api.nvprime.dev"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for http:// without AllowInsecure")
	}

	cfg.AllowInsecure = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected http:// allowed with AllowInsecure, got %v", err)
	}
}

func TestValidate_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"snapshot interval too short", func(c *Config) { c.SnapshotInterval = 5 * time.Second }},
		{"poll interval too short", func(c *Config) { c.PollInterval = 500 * time.Millisecond }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"port zero", func(c *Config) { c.HealthPort = 0 }},
		{"port too large", func(c *Config) { c.HealthPort = 70000 }},
		{"empty smi binary", func(c *Config) { c.SMIBinary = "" }},
		{"query timeout too short", func(c *Config) { c.QueryTimeout = 100 * time.Millisecond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
