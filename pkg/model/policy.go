package model

// PerformanceProfile is an abstract performance intent used as a policy
// table index. It is never part of a device snapshot.
type PerformanceProfile int

// Performance profiles, highest to lowest clock/power targets.
const (
	ProfileMaximum PerformanceProfile = iota
	ProfileBalanced
	ProfileEfficient
	ProfileQuiet
)

// String returns the lowercase profile name.
func (p PerformanceProfile) String() string {
	switch p {
	case ProfileMaximum:
		return "maximum"
	case ProfileEfficient:
		return "efficient"
	case ProfileQuiet:
		return "quiet"
	default:
		return "balanced"
	}
}

// EfficiencyMode is a second, independent intent axis used for
// power-limit and thermal-target policy lookups.
type EfficiencyMode int

// Efficiency modes, highest to lowest power targets.
const (
	EffPerformance EfficiencyMode = iota
	EffBalanced
	EffQuiet
	EffEfficiency
)

// String returns the lowercase efficiency mode name.
func (m EfficiencyMode) String() string {
	switch m {
	case EffPerformance:
		return "performance"
	case EffQuiet:
		return "quiet"
	case EffEfficiency:
		return "efficiency"
	default:
		return "balanced"
	}
}
