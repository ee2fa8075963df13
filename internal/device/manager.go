// Package device implements the capability aggregator: the entry point
// that composes raw provider reads with classification, feature
// resolution, state building, and health inference into one immutable
// DeviceCapabilities record per query.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nvprime/nvprime-agent/internal/classify"
	"github.com/nvprime/nvprime-agent/internal/observability"
	"github.com/nvprime/nvprime-agent/internal/provider"
	"github.com/nvprime/nvprime-agent/internal/state"
	"github.com/nvprime/nvprime-agent/pkg/model"
)

// ErrDeviceNotFound is returned when a device index is outside the
// enumerated range.
var ErrDeviceNotFound = errors.New("device not found")

// Aliases for the provider contract errors so callers deal with one
// error taxonomy.
var (
	ErrProviderUnavailable = provider.ErrUnavailable
	ErrPermissionDenied    = provider.ErrPermissionDenied
)

// Manager queries the provider and assembles per-device capability
// snapshots. It holds no state of its own beyond its collaborators:
// every query re-enumerates and re-reads, so results always reflect a
// point-in-time view.
type Manager struct {
	provider provider.Provider
	metrics  *observability.Metrics
}

// NewManager creates a Manager. metrics may be nil.
func NewManager(p provider.Provider, metrics *observability.Metrics) *Manager {
	return &Manager{provider: p, metrics: metrics}
}

// Count returns the number of enumerated devices.
func (m *Manager) Count(ctx context.Context) (int, error) {
	handles, err := m.devices(ctx)
	if err != nil {
		return 0, err
	}
	return len(handles), nil
}

// GetCapabilities builds a fresh DeviceCapabilities for the device at
// the given zero-based index. It fails with ErrDeviceNotFound for an
// out-of-range index (before any per-device read) or with
// ErrProviderUnavailable when the provider cannot be reached. Partial
// telemetry degrades to sentinel values instead of failing.
func (m *Manager) GetCapabilities(ctx context.Context, index int) (model.DeviceCapabilities, error) {
	handles, err := m.devices(ctx)
	if err != nil {
		return model.DeviceCapabilities{}, err
	}
	if index < 0 || index >= len(handles) {
		return model.DeviceCapabilities{}, fmt.Errorf("device: index %d of %d devices: %w", index, len(handles), ErrDeviceNotFound)
	}
	h := handles[index]

	id, err := m.identity(ctx, h)
	if err != nil {
		return model.DeviceCapabilities{}, fmt.Errorf("device %d: reading identity: %w", index, err)
	}

	// Clock, power, and flag reads are allowed to fail individually;
	// the builders substitute sentinels for whatever is missing.
	clocks, err := m.provider.Clocks(ctx, h)
	m.observe("clocks", err)
	if err != nil {
		slog.Warn("clock read failed, continuing with partial data", "device", index, "error", err)
	}
	power, err := m.provider.PowerThermal(ctx, h)
	m.observe("power_thermal", err)
	if err != nil {
		slog.Warn("power/thermal read failed, continuing with partial data", "device", index, "error", err)
	}
	flags, err := m.provider.FeatureFlags(ctx, h)
	m.observe("feature_flags", err)
	if err != nil {
		slog.Warn("feature flag read failed, continuing with partial data", "device", index, "error", err)
	}

	arch := classify.Classify(id.ChipID, id.ComputeMajor, id.ComputeMinor)
	powerState := state.BuildPowerState(power)
	health := state.InferHealth(powerState)

	caps := model.DeviceCapabilities{
		Index:            index,
		Name:             id.Name,
		UUID:             id.UUID,
		PCIeBusID:        id.BusID,
		Architecture:     arch,
		ArchitectureName: arch.String(),
		ComputeMajor:     id.ComputeMajor,
		ComputeMinor:     id.ComputeMinor,
		DriverVersion:    id.DriverVersion,
		VRAMTotalMB:      deref(id.VRAMTotalMB),
		VRAMUsedMB:       deref(id.VRAMUsedMB),
		PCIeGen:          derefInt(id.PCIeGen),
		PCIeWidth:        derefInt(id.PCIeWidth),
		Features:         classify.Features(arch, flags),
		Core:             state.BuildCoreState(clocks),
		Power:            powerState,
		Health:           health,
		HealthName:       health.String(),
		ThermalThrottling: state.IsThermalThrottling(powerState),
		PowerThrottling:   state.IsPowerThrottling(powerState),
		CollectedAt:       time.Now().UnixMilli(),
	}
	return caps, nil
}

// GetClockLimits returns the clock envelope for the device at the given
// index, with min <= default <= max enforced per axis.
func (m *Manager) GetClockLimits(ctx context.Context, index int) (model.ClockLimits, error) {
	handles, err := m.devices(ctx)
	if err != nil {
		return model.ClockLimits{}, err
	}
	if index < 0 || index >= len(handles) {
		return model.ClockLimits{}, fmt.Errorf("device: index %d of %d devices: %w", index, len(handles), ErrDeviceNotFound)
	}

	clocks, err := m.provider.Clocks(ctx, handles[index])
	m.observe("clocks", err)
	if err != nil {
		slog.Warn("clock read failed, continuing with partial data", "device", index, "error", err)
	}
	return state.BuildClockLimits(clocks), nil
}

// SetPowerLimit sets the power limit for the device at the given index,
// in milliwatts. This is a direct pass-through to the provider's
// privileged write path; no retry is performed here.
func (m *Manager) SetPowerLimit(ctx context.Context, index int, limitMilliwatts uint32) error {
	handles, err := m.devices(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(handles) {
		return fmt.Errorf("device: index %d of %d devices: %w", index, len(handles), ErrDeviceNotFound)
	}

	if err := m.provider.SetPowerLimit(ctx, handles[index], limitMilliwatts); err != nil {
		return fmt.Errorf("device %d: setting power limit: %w", index, err)
	}
	return nil
}

func (m *Manager) devices(ctx context.Context) ([]provider.DeviceHandle, error) {
	start := time.Now()
	handles, err := m.provider.Devices(ctx)
	m.observeDuration("devices", start, err)
	if err != nil {
		return nil, fmt.Errorf("device: enumerating devices: %w", err)
	}
	return handles, nil
}

func (m *Manager) identity(ctx context.Context, h provider.DeviceHandle) (provider.Identity, error) {
	start := time.Now()
	id, err := m.provider.Identity(ctx, h)
	m.observeDuration("identity", start, err)
	return id, err
}

func (m *Manager) observe(query string, err error) {
	if m.metrics == nil {
		return
	}
	if err != nil {
		m.metrics.ProviderQueryErrors.WithLabelValues(query).Inc()
	}
}

func (m *Manager) observeDuration(query string, start time.Time, err error) {
	if m.metrics == nil {
		return
	}
	m.metrics.ProviderQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	if err != nil {
		m.metrics.ProviderQueryErrors.WithLabelValues(query).Inc()
	}
}

func deref(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
