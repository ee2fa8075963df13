package model

// FeatureMatrix is the normalized feature-support matrix for a device.
// A bit is true only when the architecture generation supports the
// feature and the driver reports it as present.
type FeatureMatrix struct {
	RTX          bool `json:"rtx"`
	DLSS         bool `json:"dlss"`
	DLSS3        bool `json:"dlss3"`
	Reflex       bool `json:"reflex"`
	NVENC        bool `json:"nvenc"`
	PowerControl bool `json:"power_control"`
	ClockControl bool `json:"clock_control"`
	FanControl   bool `json:"fan_control"`
}

// DeviceCapabilities is an immutable per-device snapshot combining stable
// identity, the derived architecture and feature matrix, and a
// point-in-time read of core and power state. It is constructed fresh on
// every query and never cached, so two snapshots for the same device may
// legitimately disagree.
type DeviceCapabilities struct {
	Index            int    `json:"index"`
	Name             string `json:"name"`
	UUID             string `json:"uuid"`
	PCIeBusID        string `json:"pcie_bus_id"`
	Architecture     Architecture `json:"architecture"`
	ArchitectureName string       `json:"architecture_name"`
	ComputeMajor     int          `json:"compute_major"`
	ComputeMinor     int          `json:"compute_minor"`
	DriverVersion    string       `json:"driver_version,omitempty"`

	VRAMTotalMB uint64 `json:"vram_total_mb"`
	VRAMUsedMB  uint64 `json:"vram_used_mb"`
	PCIeGen     int    `json:"pcie_gen"`
	PCIeWidth   int    `json:"pcie_width"`

	Features FeatureMatrix `json:"features"`

	// Core and Power are value copies owned by this snapshot.
	Core  CoreState  `json:"core"`
	Power PowerState `json:"power"`

	// Derived from Power at snapshot time.
	Health            PowerHealth `json:"health"`
	HealthName        string      `json:"health_name"`
	ThermalThrottling bool        `json:"thermal_throttling"`
	PowerThrottling   bool        `json:"power_throttling"`

	CollectedAt int64 `json:"collected_at"`
}

// Temperature returns the core GPU temperature in degrees Celsius.
func (d *DeviceCapabilities) Temperature() uint32 { return d.Power.GPUTempC }

// PowerUsageMilliwatts returns the current power draw in milliwatts.
func (d *DeviceCapabilities) PowerUsageMilliwatts() int {
	return int(d.Power.PowerDrawW * 1000)
}

// GPUClock returns the current graphics clock in MHz.
func (d *DeviceCapabilities) GPUClock() uint32 { return d.Core.GPUClockMHz }

// MemClock returns the current memory clock in MHz.
func (d *DeviceCapabilities) MemClock() uint32 { return d.Core.MemClockMHz }

// PState returns the current performance state index.
func (d *DeviceCapabilities) PState() uint32 { return d.Core.PState }
