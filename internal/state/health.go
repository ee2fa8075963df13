package state

import "github.com/nvprime/nvprime-agent/pkg/model"

// InferHealth classifies a PowerState into a discrete health tier using
// ordered threshold comparison; the first matching tier wins. All bounds
// are inclusive. A zero threshold or limit disables its clause so that
// hardware that does not report a value is not misclassified.
func InferHealth(ps model.PowerState) model.PowerHealth {
	switch {
	case tempAtLeast(ps.GPUTempC, ps.ThermalShutdownC) || drawAtLeast(ps.PowerDrawW, ps.PowerLimitMaxW):
		return model.HealthCritical
	case tempAtLeast(ps.GPUTempC, ps.ThermalSlowdownC) || drawAtLeast(ps.PowerDrawW, ps.PowerLimitW):
		return model.HealthThrottling
	case tempAtLeast(ps.GPUTempC, ps.ThermalTargetC):
		return model.HealthModerate
	default:
		return model.HealthOptimal
	}
}

// IsThermalThrottling reports whether the core temperature has reached
// the slowdown point. Computed from the temperature clause alone: a
// device can power-throttle while thermally healthy and vice versa.
func IsThermalThrottling(ps model.PowerState) bool {
	return tempAtLeast(ps.GPUTempC, ps.ThermalSlowdownC) ||
		tempAtLeast(ps.GPUTempC, ps.ThermalShutdownC)
}

// IsPowerThrottling reports whether the power draw has reached the
// configured limit. Computed from the power clause alone.
func IsPowerThrottling(ps model.PowerState) bool {
	return drawAtLeast(ps.PowerDrawW, ps.PowerLimitW) ||
		drawAtLeast(ps.PowerDrawW, ps.PowerLimitMaxW)
}

func tempAtLeast(temp, threshold uint32) bool {
	return threshold > 0 && temp >= threshold
}

func drawAtLeast(draw, limit float64) bool {
	return limit > 0 && draw >= limit
}
