package classify

import (
	"github.com/nvprime/nvprime-agent/internal/provider"
	"github.com/nvprime/nvprime-agent/pkg/model"
)

// Minimum generation that can physically support each feature. The
// driver can still disable a feature on a capable generation, which is
// why Features intersects with the reported flags.
const (
	minNVENC        = model.ArchKepler
	minPowerControl = model.ArchMaxwell
	minClockControl = model.ArchMaxwell
	minFanControl   = model.ArchMaxwell
	minRTX          = model.ArchTuring
	minDLSS         = model.ArchTuring
	minReflex       = model.ArchTuring
	minDLSS3        = model.ArchAdaLovelace
)

// Features resolves the normalized feature matrix for a device. Each bit
// is true only when the architecture is new enough AND the driver
// reports the flag; an unknown architecture yields all false.
func Features(arch model.Architecture, raw provider.FeatureFlags) model.FeatureMatrix {
	if arch == model.ArchUnknown {
		return model.FeatureMatrix{}
	}
	return model.FeatureMatrix{
		RTX:          raw.RTX && arch.AtLeast(minRTX),
		DLSS:         raw.DLSS && arch.AtLeast(minDLSS),
		DLSS3:        raw.DLSS3 && arch.AtLeast(minDLSS3),
		Reflex:       raw.Reflex && arch.AtLeast(minReflex),
		NVENC:        raw.NVENC && arch.AtLeast(minNVENC),
		PowerControl: raw.PowerManagement && arch.AtLeast(minPowerControl),
		ClockControl: raw.ClockControl && arch.AtLeast(minClockControl),
		FanControl:   raw.FanControl && arch.AtLeast(minFanControl),
	}
}
