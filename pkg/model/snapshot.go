package model

// NodeSnapshot is the complete per-host payload sent to the backend on
// every snapshot interval.
type NodeSnapshot struct {
	// Identity
	SnapshotID   string `json:"snapshot_id"`
	AgentID      string `json:"agent_id"`
	NodeName     string `json:"node_name"`
	Timestamp    int64  `json:"timestamp"`
	AgentVersion string `json:"agent_version"`

	// Driver
	DriverVersion string `json:"driver_version,omitempty"`

	// Devices
	Devices []DeviceCapabilities `json:"devices"`

	// Computed
	Summary NodeSummary `json:"summary"`

	// Agent health
	Health AgentHealth `json:"health"`
}

// NodeSummary holds computed counts and totals over the device set.
type NodeSummary struct {
	DeviceCount int `json:"device_count"`

	// Per-tier health counts
	OptimalCount    int `json:"optimal_count"`
	ModerateCount   int `json:"moderate_count"`
	ThrottlingCount int `json:"throttling_count"`
	CriticalCount   int `json:"critical_count"`

	ThermalThrottlingCount int `json:"thermal_throttling_count"`
	PowerThrottlingCount   int `json:"power_throttling_count"`

	TotalVRAMMB uint64 `json:"total_vram_mb"`
	UsedVRAMMB  uint64 `json:"used_vram_mb"`

	MaxTemperatureC uint32  `json:"max_temperature_c"`
	MaxPowerDrawW   float64 `json:"max_power_draw_w"`
	TotalPowerDrawW float64 `json:"total_power_draw_w"`
}

// AgentHealth reports the agent's own status alongside the device data.
type AgentHealth struct {
	ProviderAvailable bool     `json:"provider_available"`
	ActiveErrorsCount int      `json:"active_errors_count"`
	ErrorCodes        []string `json:"error_codes,omitempty"`
	UptimeSeconds     int64    `json:"uptime_seconds"`
	StartedAt         int64    `json:"started_at"`
}
