package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the Config contains valid values.
// Returns an error describing the first invalid field found.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("config: NVPRIME_API_KEY is required")
	}

	if c.BackendURL == "" {
		return fmt.Errorf("config: NVPRIME_BACKEND_URL is required")
	}
	if !c.AllowInsecure && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("config: NVPRIME_BACKEND_URL must use https:// (got %q); set NVPRIME_ALLOW_INSECURE=true to override", c.BackendURL)
	}

	if c.SnapshotInterval < 10*time.Second {
		return fmt.Errorf("config: SnapshotInterval must be >= 10s, got %v", c.SnapshotInterval)
	}

	if c.PollInterval < time.Second {
		return fmt.Errorf("config: PollInterval must be >= 1s, got %v", c.PollInterval)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("config: MaxRetries must be >= 0, got %d", c.MaxRetries)
	}

	if c.HealthPort < 1 || c.HealthPort > 65535 {
		return fmt.Errorf("config: HealthPort must be 1-65535, got %d", c.HealthPort)
	}

	if c.SMIBinary == "" {
		return fmt.Errorf("config: NVPRIME_SMI_BINARY must not be empty")
	}

	if c.QueryTimeout < time.Second {
		return fmt.Errorf("config: QueryTimeout must be >= 1s, got %v", c.QueryTimeout)
	}

	return nil
}
