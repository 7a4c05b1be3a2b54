package sig

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

// Best-effort metadata annotation. Each extraction pass is independent and
// failure-tolerant; none of them affects confidence or acceptance.

var (
	concentrationPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(mg|mcg|g)\s*(?:/|per)\s*(\d+(?:\.\d+)?)?\s*(ml|l)\b`)
	insulinUnitsPattern  = regexp.MustCompile(`\bu-?(\d+)\b`)
	inhalerCapPattern    = regexp.MustCompile(`(\d+)\s*(?:actuations?|puffs?|sprays?|inhalations?)\s*(?:per|/)\s*(?:canister|inhaler|device)\b`)
)

const defaultInsulinStrength = 100

func annotate(parsed *domain.ParsedInstruction, norm string) {
	parsed.DosageForm = detectDosageForm(parsed.Unit, norm)

	if c := extractConcentration(norm); c != nil {
		parsed.Concentration = c
	}
	if parsed.DosageForm == domain.FormInsulin {
		parsed.InsulinStrength = extractInsulinStrength(norm)
	}
	if capacity := extractInhalerCapacity(norm); capacity > 0 {
		parsed.InhalerCapacity = capacity
	}
}

func detectDosageForm(unit domain.Unit, norm string) domain.DosageForm {
	switch unit {
	case domain.UnitTablet:
		return domain.FormTablet
	case domain.UnitCapsule:
		return domain.FormCapsule
	case domain.UnitPill:
		if strings.Contains(norm, "capsule") {
			return domain.FormCapsule
		}
		return domain.FormTablet
	case domain.UnitMilliliter, domain.UnitLiter:
		return domain.FormLiquid
	case domain.UnitActuation:
		return domain.FormInhaler
	case domain.UnitUnit:
		if strings.Contains(norm, "insulin") || strings.Contains(norm, "inject") ||
			strings.Contains(norm, "subcutaneous") || insulinUnitsPattern.MatchString(norm) {
			return domain.FormInsulin
		}
		return domain.FormOther
	default:
		return domain.FormOther
	}
}

// extractConcentration recognizes mass-per-volume phrases such as
// "250 mg/5 ml" or "125 mg per 5 ml". A bare "mg/ml" denominator counts as
// one volume unit.
func extractConcentration(norm string) *domain.Concentration {
	m := concentrationPattern.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil || amount <= 0 {
		return nil
	}
	volume := 1.0
	if m[3] != "" {
		volume, err = strconv.ParseFloat(m[3], 64)
		if err != nil || volume <= 0 {
			return nil
		}
	}
	volumeUnit := domain.UnitMilliliter
	if m[4] == "l" {
		volumeUnit = domain.UnitLiter
	}
	c := domain.Concentration{
		Amount:     amount,
		AmountUnit: m[2],
		Volume:     volume,
		VolumeUnit: volumeUnit,
	}
	if !c.Valid() {
		return nil
	}
	return &c
}

func extractInsulinStrength(norm string) float64 {
	m := insulinUnitsPattern.FindStringSubmatch(norm)
	if m == nil {
		return defaultInsulinStrength
	}
	strength, err := strconv.ParseFloat(m[1], 64)
	if err != nil || strength <= 0 {
		return defaultInsulinStrength
	}
	return strength
}

func extractInhalerCapacity(norm string) int {
	m := inhalerCapPattern.FindStringSubmatch(norm)
	if m == nil {
		return 0
	}
	capacity, err := strconv.Atoi(m[1])
	if err != nil || capacity <= 0 {
		return 0
	}
	return capacity
}
