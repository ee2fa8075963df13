package config

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Config holds all agent configuration values.
type Config struct {
	APIKey           string
	AgentID          string
	NodeName         string
	BackendURL       string
	SnapshotInterval time.Duration
	PollInterval     time.Duration
	MaxRetries       int
	RequestTimeout   time.Duration
	HealthPort       int
	AgentVersion     string

	// Provider
	SMIBinary    string        // NVPRIME_SMI_BINARY, default: "nvidia-smi"
	QueryTimeout time.Duration // NVPRIME_QUERY_TIMEOUT, default: 10s

	// Security
	AllowInsecure  bool // NVPRIME_ALLOW_INSECURE, default: false; allows http:// BackendURL
	DebugEndpoints bool // NVPRIME_DEBUG_ENDPOINTS, default: false; enables pprof/debug on health port
}

// Load reads configuration from environment variables and returns a Config
// with defaults applied for any unset values.
func Load() Config {
	cfg := Config{
		APIKey:           os.Getenv("NVPRIME_API_KEY"),
		AgentID:          os.Getenv("NVPRIME_AGENT_ID"),
		NodeName:         os.Getenv("NVPRIME_NODE_NAME"),
		BackendURL:       envOrDefault("NVPRIME_BACKEND_URL", "https://api.nvprime.dev"),
		SnapshotInterval: parseDuration("NVPRIME_SNAPSHOT_INTERVAL", 60*time.Second),
		PollInterval:     parseDuration("NVPRIME_POLL_INTERVAL", 15*time.Second),
		MaxRetries:       parseInt("NVPRIME_MAX_RETRIES", 5),
		RequestTimeout:   parseDuration("NVPRIME_REQUEST_TIMEOUT", 30*time.Second),
		HealthPort:       parseInt("NVPRIME_HEALTH_PORT", 8080),
		AgentVersion:     envOrDefault("NVPRIME_AGENT_VERSION", "dev"),
		SMIBinary:        envOrDefault("NVPRIME_SMI_BINARY", "nvidia-smi"),
		QueryTimeout:     parseDuration("NVPRIME_QUERY_TIMEOUT", 10*time.Second),
	}

	if cfg.AgentID == "" {
		cfg.AgentID = uuid.New().String()
	}
	if cfg.NodeName == "" {
		if hostname, err := os.Hostname(); err == nil {
			cfg.NodeName = hostname
		}
	}

	cfg.AllowInsecure = parseBool("NVPRIME_ALLOW_INSECURE", false)
	cfg.DebugEndpoints = parseBool("NVPRIME_DEBUG_ENDPOINTS", false)

	return cfg
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// parseDuration tries time.ParseDuration first, then falls back to treating
// the value as integer seconds.
func parseDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(v)
	if err == nil {
		return d
	}

	// Fallback: treat as integer seconds
	secs, err := strconv.Atoi(v)
	if err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}

func parseBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func parseInt(key string, defaultVal int) int {
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
