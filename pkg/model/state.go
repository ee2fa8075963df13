package model

// CoreState holds the clock, p-state, and utilization readings for a
// device at a single point in time.
type CoreState struct {
	GPUClockMHz   uint32 `json:"gpu_clock_mhz"`
	MemClockMHz   uint32 `json:"mem_clock_mhz"`
	SMClockMHz    uint32 `json:"sm_clock_mhz"`
	VideoClockMHz uint32 `json:"video_clock_mhz"`

	// PState is the current performance state; lower index means higher
	// performance (0 = maximum).
	PState uint32 `json:"pstate"`

	// Utilization percentages, clamped to [0,100].
	GPUUtilization uint32 `json:"gpu_utilization"`
	MemUtilization uint32 `json:"mem_utilization"`
}

// ClockLimits holds the min/max/default clock envelope for a device.
// Invariant: min <= default <= max for each axis.
type ClockLimits struct {
	MinGPUMHz     uint32 `json:"min_gpu_mhz"`
	MaxGPUMHz     uint32 `json:"max_gpu_mhz"`
	DefaultGPUMHz uint32 `json:"default_gpu_mhz"`
	MinMemMHz     uint32 `json:"min_mem_mhz"`
	MaxMemMHz     uint32 `json:"max_mem_mhz"`
	DefaultMemMHz uint32 `json:"default_mem_mhz"`
}

// FanMode describes how the fan target is controlled.
type FanMode int

// Fan control modes. FanAuto is the sentinel when the mode is unknown.
const (
	FanAuto FanMode = iota
	FanManual
	FanCurve
	FanZeroRPM
)

// String returns the lowercase fan mode name.
func (m FanMode) String() string {
	switch m {
	case FanManual:
		return "manual"
	case FanCurve:
		return "curve"
	case FanZeroRPM:
		return "zero_rpm"
	default:
		return "auto"
	}
}

// PowerState holds the power, thermal, and fan readings for a device at
// a single point in time. Power draw may transiently exceed the limit
// by sensor noise; callers must not assume draw <= limit.
type PowerState struct {
	PowerDrawW         float64 `json:"power_draw_w"`
	PowerLimitW        float64 `json:"power_limit_w"`
	PowerLimitDefaultW float64 `json:"power_limit_default_w"`
	PowerLimitMinW     float64 `json:"power_limit_min_w"`
	PowerLimitMaxW     float64 `json:"power_limit_max_w"`

	GPUTempC     uint32 `json:"gpu_temp_c"`
	MemoryTempC  uint32 `json:"memory_temp_c"`
	HotspotTempC uint32 `json:"hotspot_temp_c"`

	// Thermal thresholds, ordered target < slowdown < shutdown.
	// Zero means the hardware did not report the threshold.
	ThermalTargetC   uint32 `json:"thermal_target_c"`
	ThermalSlowdownC uint32 `json:"thermal_slowdown_c"`
	ThermalShutdownC uint32 `json:"thermal_shutdown_c"`

	FanSpeedPercent  uint32  `json:"fan_speed_percent"`
	FanSpeedRPM      uint32  `json:"fan_speed_rpm"`
	FanTargetPercent uint32  `json:"fan_target_percent"`
	FanMode          FanMode `json:"fan_mode"`
}

// PowerHealth is the discrete health classification derived from a
// PowerState. Tiers are ordered: Optimal < Moderate < Throttling < Critical.
type PowerHealth int

// Health tiers.
const (
	HealthOptimal PowerHealth = iota
	HealthModerate
	HealthThrottling
	HealthCritical
)

// String returns the lowercase health tier name.
func (h PowerHealth) String() string {
	switch h {
	case HealthModerate:
		return "moderate"
	case HealthThrottling:
		return "throttling"
	case HealthCritical:
		return "critical"
	default:
		return "optimal"
	}
}
