package collector

import "context"

// Collector is the interface that all telemetry collectors implement.
type Collector interface {
	// Name returns the collector's name (e.g., "devices").
	Name() string
	// Start launches the collector's background work.
	Start(ctx context.Context) error
	// WaitForSync blocks until the collector has produced its first data.
	WaitForSync(ctx context.Context) error
	// Stop stops the collector and cleans up resources.
	Stop()
}
