// Package policy holds the static intent-to-target mapping tables:
// percentage-of-maximum clock and power targets per performance profile,
// and power/thermal targets per efficiency mode. The tables are
// process-wide immutable constants; lookups are total over their
// enumeration domains, with out-of-range values falling back to the
// balanced entry.
package policy

import "github.com/nvprime/nvprime-agent/pkg/model"

// Profile targets as percent of the device maximum. Monotonic:
// Maximum >= Balanced >= Efficient >= Quiet on every axis.
var (
	profileGPUClockPercent = map[model.PerformanceProfile]uint32{
		model.ProfileMaximum:   100,
		model.ProfileBalanced:  85,
		model.ProfileEfficient: 70,
		model.ProfileQuiet:     50,
	}
	profileMemClockPercent = map[model.PerformanceProfile]uint32{
		model.ProfileMaximum:   100,
		model.ProfileBalanced:  90,
		model.ProfileEfficient: 75,
		model.ProfileQuiet:     60,
	}
	profilePowerLimitPercent = map[model.PerformanceProfile]uint32{
		model.ProfileMaximum:   100,
		model.ProfileBalanced:  90,
		model.ProfileEfficient: 75,
		model.ProfileQuiet:     60,
	}
)

// Efficiency targets. Power is percent of the device maximum limit;
// the thermal target is an absolute temperature in degrees Celsius.
// Monotonic: Performance >= Balanced >= Quiet >= Efficiency.
var (
	efficiencyPowerPercent = map[model.EfficiencyMode]uint32{
		model.EffPerformance: 100,
		model.EffBalanced:    85,
		model.EffQuiet:       70,
		model.EffEfficiency:  60,
	}
	efficiencyThermalTargetC = map[model.EfficiencyMode]uint32{
		model.EffPerformance: 87,
		model.EffBalanced:    83,
		model.EffQuiet:       78,
		model.EffEfficiency:  72,
	}
)

// ProfileGPUClockPercent returns the graphics-clock target for a profile
// as percent of the device maximum.
func ProfileGPUClockPercent(p model.PerformanceProfile) uint32 {
	return lookupProfile(profileGPUClockPercent, p)
}

// ProfileMemClockPercent returns the memory-clock target for a profile
// as percent of the device maximum.
func ProfileMemClockPercent(p model.PerformanceProfile) uint32 {
	return lookupProfile(profileMemClockPercent, p)
}

// ProfilePowerLimitPercent returns the power-limit target for a profile
// as percent of the device maximum limit.
func ProfilePowerLimitPercent(p model.PerformanceProfile) uint32 {
	return lookupProfile(profilePowerLimitPercent, p)
}

// EfficiencyPowerPercent returns the power-limit target for an
// efficiency mode as percent of the device maximum limit.
func EfficiencyPowerPercent(m model.EfficiencyMode) uint32 {
	return lookupEfficiency(efficiencyPowerPercent, m)
}

// EfficiencyThermalTarget returns the absolute thermal target in degrees
// Celsius for an efficiency mode.
func EfficiencyThermalTarget(m model.EfficiencyMode) uint32 {
	return lookupEfficiency(efficiencyThermalTargetC, m)
}

func lookupProfile(table map[model.PerformanceProfile]uint32, p model.PerformanceProfile) uint32 {
	if v, ok := table[p]; ok {
		return v
	}
	return table[model.ProfileBalanced]
}

func lookupEfficiency(table map[model.EfficiencyMode]uint32, m model.EfficiencyMode) uint32 {
	if v, ok := table[m]; ok {
		return v
	}
	return table[model.EffBalanced]
}
