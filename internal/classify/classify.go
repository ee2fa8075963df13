// Package classify maps raw chip identifiers and compute-capability
// versions to architecture generations, and resolves the normalized
// feature matrix for a device. All functions are pure and total:
// unrecognized input degrades to ArchUnknown, never an error.
package classify

import (
	"strings"

	"github.com/nvprime/nvprime-agent/pkg/model"
)

// chipPrefixes maps the chip-id family prefix to its generation.
// Ordered longest-prefix-first where prefixes overlap.
var chipPrefixes = []struct {
	prefix string
	arch   model.Architecture
}{
	{"GB", model.ArchBlackwell},
	{"GH", model.ArchHopper},
	{"AD", model.ArchAdaLovelace},
	{"GA", model.ArchAmpere},
	{"TU", model.ArchTuring},
	{"GV", model.ArchVolta},
	{"GP", model.ArchPascal},
	{"GM", model.ArchMaxwell},
	{"GK", model.ArchKepler},
}

// Classify determines the architecture generation for a device. The
// compute capability is authoritative when present (major > 0); the
// chip id prefix is the fallback for drivers that do not report it.
func Classify(chipID string, computeMajor, computeMinor int) model.Architecture {
	if computeMajor > 0 {
		if arch := FromComputeCapability(computeMajor, computeMinor); arch != model.ArchUnknown {
			return arch
		}
	}
	return FromChipID(chipID)
}

// FromComputeCapability maps a CUDA compute-capability version pair to
// its architecture generation.
func FromComputeCapability(major, minor int) model.Architecture {
	switch major {
	case 3:
		return model.ArchKepler
	case 5:
		return model.ArchMaxwell
	case 6:
		return model.ArchPascal
	case 7:
		if minor >= 5 {
			return model.ArchTuring
		}
		return model.ArchVolta
	case 8:
		if minor >= 9 {
			return model.ArchAdaLovelace
		}
		return model.ArchAmpere
	case 9:
		return model.ArchHopper
	case 10, 12:
		return model.ArchBlackwell
	default:
		return model.ArchUnknown
	}
}

// FromChipID maps a chip identifier (e.g. "AD102", "ga104") to its
// architecture generation by family prefix.
func FromChipID(chipID string) model.Architecture {
	id := strings.ToUpper(strings.TrimSpace(chipID))
	for _, p := range chipPrefixes {
		if strings.HasPrefix(id, p.prefix) {
			return p.arch
		}
	}
	return model.ArchUnknown
}
