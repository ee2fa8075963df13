package model

// Architecture identifies an NVIDIA GPU architecture generation.
// Values are ordered oldest to newest; ArchUnknown sorts before every
// known generation and is the fallback for unrecognized hardware.
type Architecture int

// Architecture generations, oldest to newest.
const (
	ArchUnknown Architecture = iota
	ArchKepler
	ArchMaxwell
	ArchPascal
	ArchVolta
	ArchTuring
	ArchAmpere
	ArchAdaLovelace
	ArchHopper
	ArchBlackwell
)

// String returns the human-readable architecture name.
func (a Architecture) String() string {
	switch a {
	case ArchKepler:
		return "Kepler"
	case ArchMaxwell:
		return "Maxwell"
	case ArchPascal:
		return "Pascal"
	case ArchVolta:
		return "Volta"
	case ArchTuring:
		return "Turing"
	case ArchAmpere:
		return "Ampere"
	case ArchAdaLovelace:
		return "Ada Lovelace"
	case ArchHopper:
		return "Hopper"
	case ArchBlackwell:
		return "Blackwell"
	default:
		return "Unknown"
	}
}

// AtLeast reports whether a is the given generation or newer.
// ArchUnknown is never "at least" any known generation.
func (a Architecture) AtLeast(min Architecture) bool {
	return a != ArchUnknown && a >= min
}
