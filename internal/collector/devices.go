package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nvprime/nvprime-agent/internal/device"
	agenterrors "github.com/nvprime/nvprime-agent/internal/errors"
	"github.com/nvprime/nvprime-agent/internal/observability"
	"github.com/nvprime/nvprime-agent/pkg/model"
)

// CapabilitySource abstracts the device manager for testability.
type CapabilitySource interface {
	Count(ctx context.Context) (int, error)
	GetCapabilities(ctx context.Context, index int) (model.DeviceCapabilities, error)
}

// DeviceCollector polls the capability aggregator on a timer and holds
// the latest per-device snapshots. It implements the Collector interface.
type DeviceCollector struct {
	source         CapabilitySource
	interval       time.Duration
	metrics        *observability.Metrics
	errorCollector *agenterrors.ErrorCollector
	stopCh         chan struct{}
	done           chan struct{}

	syncOnce sync.Once
	synced   chan struct{}

	mu                sync.RWMutex
	devices           []model.DeviceCapabilities
	providerAvailable bool
}

// NewDeviceCollector creates a DeviceCollector polling the given source.
// metrics and errCollector may be nil.
func NewDeviceCollector(source CapabilitySource, interval time.Duration, metrics *observability.Metrics, errCollector *agenterrors.ErrorCollector) *DeviceCollector {
	return &DeviceCollector{
		source:         source,
		interval:       interval,
		metrics:        metrics,
		errorCollector: errCollector,
		stopCh:         make(chan struct{}),
		done:           make(chan struct{}),
		synced:         make(chan struct{}),
	}
}

// Name returns the collector name.
func (c *DeviceCollector) Name() string { return "devices" }

// Start launches the background polling goroutine.
func (c *DeviceCollector) Start(ctx context.Context) error {
	go c.run(ctx)
	return nil
}

// WaitForSync blocks until the first poll completes or the context is canceled.
func (c *DeviceCollector) WaitForSync(ctx context.Context) error {
	select {
	case <-c.synced:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop signals the collector to stop and waits for the goroutine to exit.
func (c *DeviceCollector) Stop() {
	close(c.stopCh)
	<-c.done
}

// Devices returns a copy of the latest collected device snapshots.
func (c *DeviceCollector) Devices() []model.DeviceCapabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.DeviceCapabilities, len(c.devices))
	copy(out, c.devices)
	return out
}

// ProviderAvailable reports whether the last poll reached the provider.
func (c *DeviceCollector) ProviderAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providerAvailable
}

func (c *DeviceCollector) run(ctx context.Context) {
	defer close(c.done)

	// Poll immediately on start.
	c.poll(ctx)
	c.syncOnce.Do(func() { close(c.synced) })

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.poll(ctx)
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *DeviceCollector) poll(ctx context.Context) {
	start := time.Now()

	count, err := c.source.Count(ctx)
	if err != nil {
		c.mu.Lock()
		c.providerAvailable = false
		c.mu.Unlock()

		slog.Warn("device collector: enumeration failed", "error", err)
		c.reportError(agenterrors.ErrProviderUnavailable, err)
		c.observePoll(start, "error", nil)
		return
	}

	devices := make([]model.DeviceCapabilities, 0, count)
	partial := false
	for i := 0; i < count; i++ {
		caps, err := c.source.GetCapabilities(ctx, i)
		if err != nil {
			// A device disappearing mid-poll is expected during reset
			// or unbind; skip it and keep the rest.
			if errors.Is(err, device.ErrDeviceNotFound) {
				slog.Debug("device collector: device vanished during poll", "device", i)
				continue
			}
			partial = true
			slog.Warn("device collector: capability query failed", "device", i, "error", err)
			c.reportError(agenterrors.ErrDeviceQueryFailed, fmt.Errorf("device %d: %w", i, err))
			continue
		}
		devices = append(devices, caps)
	}

	c.mu.Lock()
	c.devices = devices
	c.providerAvailable = true
	c.mu.Unlock()

	status := "success"
	if partial {
		status = "partial"
		c.reportError(agenterrors.ErrPartialData, fmt.Errorf("collected %d of %d devices", len(devices), count))
	}
	c.observePoll(start, status, devices)

	slog.Debug("device collector: poll complete", "device_count", len(devices))
}

func (c *DeviceCollector) reportError(code agenterrors.Code, err error) {
	if c.errorCollector == nil {
		return
	}
	c.errorCollector.Report(agenterrors.AgentError{
		Code:      code,
		Message:   err.Error(),
		Component: "collector",
		Timestamp: time.Now().UnixMilli(),
		Err:       err,
	})
}

func (c *DeviceCollector) observePoll(start time.Time, status string, devices []model.DeviceCapabilities) {
	if c.metrics == nil {
		return
	}
	c.metrics.PollDuration.Observe(time.Since(start).Seconds())
	c.metrics.PollsTotal.WithLabelValues(status).Inc()
	c.metrics.Devices.Set(float64(len(devices)))

	tiers := map[model.PowerHealth]int{}
	for i := range devices {
		tiers[devices[i].Health]++
	}
	for _, h := range []model.PowerHealth{model.HealthOptimal, model.HealthModerate, model.HealthThrottling, model.HealthCritical} {
		c.metrics.DeviceHealth.WithLabelValues(h.String()).Set(float64(tiers[h]))
	}
}
