// Package provider defines the device query contract the agent consumes:
// enumeration, raw identity/clock/power/feature reads, and the privileged
// power-limit write. Raw readings use pointer fields so "unavailable" is
// representable without inventing in-band sentinel values; normalization
// into the typed model happens in internal/state.
package provider

import (
	"context"
	"errors"
)

// Contract errors. Implementations wrap these so callers can use errors.Is.
var (
	// ErrUnavailable means the provider cannot be reached at all
	// (driver not loaded, query binary missing, daemon down).
	ErrUnavailable = errors.New("provider unavailable")

	// ErrPermissionDenied means a privileged write was attempted
	// without elevation.
	ErrPermissionDenied = errors.New("permission denied")
)

// DeviceHandle identifies an enumerated device for subsequent reads.
type DeviceHandle struct {
	Index int
	BusID string
}

// Identity holds the stable identity fields for a device.
type Identity struct {
	Name          string
	UUID          string
	BusID         string
	ChipID        string
	ComputeMajor  int
	ComputeMinor  int
	DriverVersion string

	VRAMTotalMB *uint64
	VRAMUsedMB  *uint64
	PCIeGen     *int
	PCIeWidth   *int
}

// ClockReadings holds raw clock, p-state, and utilization readings.
// Nil means the device or driver did not report the value.
type ClockReadings struct {
	GPUClockMHz   *uint32
	MemClockMHz   *uint32
	SMClockMHz    *uint32
	VideoClockMHz *uint32

	MaxGPUClockMHz     *uint32
	MaxMemClockMHz     *uint32
	MinGPUClockMHz     *uint32
	MinMemClockMHz     *uint32
	DefaultGPUClockMHz *uint32
	DefaultMemClockMHz *uint32

	PState *uint32

	GPUUtilization *float64
	MemUtilization *float64
}

// PowerThermalReadings holds raw power, temperature, and fan readings.
// Nil means the device or driver did not report the value.
type PowerThermalReadings struct {
	PowerDrawW         *float64
	PowerLimitW        *float64
	PowerLimitDefaultW *float64
	PowerLimitMinW     *float64
	PowerLimitMaxW     *float64

	GPUTempC     *int
	MemoryTempC  *int
	HotspotTempC *int

	ThermalTargetC   *int
	ThermalSlowdownC *int
	ThermalShutdownC *int

	FanSpeedPercent  *int
	FanSpeedRPM      *int
	FanTargetPercent *int

	// FanMode is the raw mode string ("auto", "manual", "curve",
	// "zero_rpm"); nil or unrecognized maps to auto.
	FanMode *string
}

// FeatureFlags are the capability bits as reported by the driver. They
// are claims, not truth: the resolver intersects them with what the
// architecture generation can physically support.
type FeatureFlags struct {
	RTX             bool
	DLSS            bool
	DLSS3           bool
	Reflex          bool
	NVENC           bool
	PowerManagement bool
	ClockControl    bool
	FanControl      bool
}

// Provider is the device query collaborator. Implementations must be
// safe for concurrent reads; writes are serialized per device by the
// implementation.
type Provider interface {
	// Devices enumerates the installed devices in stable index order.
	Devices(ctx context.Context) ([]DeviceHandle, error)

	// Identity reads the stable identity fields for a device.
	Identity(ctx context.Context, h DeviceHandle) (Identity, error)

	// Clocks reads the current clock/pstate/utilization values.
	Clocks(ctx context.Context, h DeviceHandle) (ClockReadings, error)

	// PowerThermal reads the current power/temperature/fan values.
	PowerThermal(ctx context.Context, h DeviceHandle) (PowerThermalReadings, error)

	// FeatureFlags reads the driver-reported capability bits.
	FeatureFlags(ctx context.Context, h DeviceHandle) (FeatureFlags, error)

	// SetPowerLimit sets the device power limit in milliwatts.
	// Requires elevation; returns ErrPermissionDenied otherwise.
	SetPowerLimit(ctx context.Context, h DeviceHandle, limitMilliwatts uint32) error
}
