package ranking

import (
	"strings"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

// packUnitClass maps a raw extracted package unit onto the semantic classes
// shared with instruction units.
func packUnitClass(raw string) domain.UnitClass {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TABLET", "TABLETS", "TAB", "TABS", "CAPSULE", "CAPSULES", "CAP", "CAPS", "CAPLET", "CAPLETS", "PILL", "PILLS":
		return domain.ClassSolid
	case "ML", "MILLILITER", "MILLILITERS", "L", "LITER", "LITERS":
		return domain.ClassVolume
	case "UNIT", "UNITS":
		return domain.ClassCount
	case "ACTUATION", "ACTUATIONS", "SPRAY", "SPRAYS", "PUFF", "PUFFS", "INHALATION", "INHALATIONS":
		return domain.ClassActuation
	default:
		return domain.ClassUnknown
	}
}

func packUnitIsLiter(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "L", "LITER", "LITERS":
		return true
	default:
		return false
	}
}

// unitConversion reports whether a package unit is compatible with the
// target unit and, if so, the factor converting package quantities into
// target units. Same-class non-volume units need no conversion; volume
// units convert between mL and L; anything else is incompatible and the
// candidate is discarded entirely.
func unitConversion(packUnit string, target domain.Unit) (float64, bool) {
	packClass := packUnitClass(packUnit)
	targetClass := target.Class()
	if packClass == domain.ClassUnknown || targetClass == domain.ClassUnknown {
		return 0, false
	}
	if packClass != targetClass {
		return 0, false
	}
	if packClass != domain.ClassVolume {
		return 1, true
	}

	packLiter := packUnitIsLiter(packUnit)
	targetLiter := target == domain.UnitLiter
	switch {
	case packLiter == targetLiter:
		return 1, true
	case packLiter && !targetLiter:
		return 1000, true
	default:
		return 0.001, true
	}
}
