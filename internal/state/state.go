// Package state turns raw provider readings into typed CoreState,
// ClockLimits, and PowerState records, and derives the health
// classification from a PowerState. Builders are total: absent readings
// map to zero-value sentinels (FanAuto for the fan mode) and percentage
// fields are clamped to [0,100], so partial telemetry never fails a
// snapshot.
package state

import (
	"math"

	"github.com/nvprime/nvprime-agent/internal/provider"
	"github.com/nvprime/nvprime-agent/pkg/model"
)

// BuildCoreState composes a CoreState from raw clock readings.
func BuildCoreState(raw provider.ClockReadings) model.CoreState {
	return model.CoreState{
		GPUClockMHz:    u32(raw.GPUClockMHz),
		MemClockMHz:    u32(raw.MemClockMHz),
		SMClockMHz:     u32(raw.SMClockMHz),
		VideoClockMHz:  u32(raw.VideoClockMHz),
		PState:         u32(raw.PState),
		GPUUtilization: clampPercentF(raw.GPUUtilization),
		MemUtilization: clampPercentF(raw.MemUtilization),
	}
}

// BuildClockLimits composes a ClockLimits from raw clock readings,
// enforcing min <= default <= max per axis. A reported default outside
// the envelope is clamped into it; a missing default falls back to max.
func BuildClockLimits(raw provider.ClockReadings) model.ClockLimits {
	minGPU, maxGPU := envelope(u32(raw.MinGPUClockMHz), u32(raw.MaxGPUClockMHz))
	minMem, maxMem := envelope(u32(raw.MinMemClockMHz), u32(raw.MaxMemClockMHz))
	return model.ClockLimits{
		MinGPUMHz:     minGPU,
		MaxGPUMHz:     maxGPU,
		DefaultGPUMHz: defaultClock(u32(raw.DefaultGPUClockMHz), minGPU, maxGPU),
		MinMemMHz:     minMem,
		MaxMemMHz:     maxMem,
		DefaultMemMHz: defaultClock(u32(raw.DefaultMemClockMHz), minMem, maxMem),
	}
}

// BuildPowerState composes a PowerState from raw power/thermal readings.
func BuildPowerState(raw provider.PowerThermalReadings) model.PowerState {
	return model.PowerState{
		PowerDrawW:         f64(raw.PowerDrawW),
		PowerLimitW:        f64(raw.PowerLimitW),
		PowerLimitDefaultW: f64(raw.PowerLimitDefaultW),
		PowerLimitMinW:     f64(raw.PowerLimitMinW),
		PowerLimitMaxW:     f64(raw.PowerLimitMaxW),
		GPUTempC:           temp(raw.GPUTempC),
		MemoryTempC:        temp(raw.MemoryTempC),
		HotspotTempC:       temp(raw.HotspotTempC),
		ThermalTargetC:     temp(raw.ThermalTargetC),
		ThermalSlowdownC:   temp(raw.ThermalSlowdownC),
		ThermalShutdownC:   temp(raw.ThermalShutdownC),
		FanSpeedPercent:    clampPercentI(raw.FanSpeedPercent),
		FanSpeedRPM:        rpm(raw.FanSpeedRPM),
		FanTargetPercent:   clampPercentI(raw.FanTargetPercent),
		FanMode:            fanMode(raw.FanMode),
	}
}

func fanMode(raw *string) model.FanMode {
	if raw == nil {
		return model.FanAuto
	}
	switch *raw {
	case "manual":
		return model.FanManual
	case "curve":
		return model.FanCurve
	case "zero_rpm":
		return model.FanZeroRPM
	default:
		return model.FanAuto
	}
}

func u32(p *uint32) uint32 {
	if p == nil {
		return 0
	}
	return *p
}

func f64(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0
	}
	return *p
}

// temp maps a raw temperature to uint32, treating negative readings as
// absent. Sub-zero ambient is possible in theory but every negative
// value seen in the field has been a driver error marker.
func temp(p *int) uint32 {
	if p == nil || *p < 0 {
		return 0
	}
	return uint32(*p)
}

func rpm(p *int) uint32 {
	if p == nil || *p < 0 {
		return 0
	}
	return uint32(*p)
}

func clampPercentF(p *float64) uint32 {
	if p == nil || math.IsNaN(*p) {
		return 0
	}
	v := *p
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return uint32(math.Round(v))
}

func clampPercentI(p *int) uint32 {
	if p == nil || *p < 0 {
		return 0
	}
	if *p > 100 {
		return 100
	}
	return uint32(*p)
}

func envelope(min, max uint32) (uint32, uint32) {
	if max > 0 && min > max {
		min = max
	}
	return min, max
}

func defaultClock(def, min, max uint32) uint32 {
	if def == 0 {
		return max
	}
	if def < min {
		return min
	}
	if max > 0 && def > max {
		return max
	}
	return def
}
