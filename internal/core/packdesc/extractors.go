package packdesc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

var (
	leadingContainerPattern = regexp.MustCompile(`(?i)^\s*(\d+)\s+([A-Za-z]+)[A-Za-z ,-]*\s+in\s+1\s+[A-Za-z][A-Za-z ,-]*$`)

	insulinSignalPattern  = regexp.MustCompile(`(?i)\bU-?\d+\b|\bINSULIN\b`)
	insulinStrengthMarker = regexp.MustCompile(`(?i)\bU-?(\d+)\b`)

	volumeInContainerPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(mL|L)\b(?:\s*,\s*[A-Za-z][A-Za-z ,-]*?)?\s+in\s+1\s+[A-Za-z][A-Za-z ,-]*`)
	unitsInContainerPattern  = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*UNITS?\b(?:\s*,\s*[A-Za-z][A-Za-z ,-]*?)?\s+in\s+1\s+[A-Za-z][A-Za-z ,-]*`)

	actuationInContainerPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:SPRAY|ACTUATION|PUFF|INHALATION)S?\b(?:\s*,\s*METERED)?(?:\s*,\s*[A-Za-z][A-Za-z ,-]*?)?\s+in\s+1\s+[A-Za-z][A-Za-z ,-]*`)
	actuationPerDevicePattern   = regexp.MustCompile(`(?i)\b(\d+)\s*(?:ACTUATIONS?|SPRAYS?|PUFFS?)\s*(?:PER|/)\s*(?:CANISTER|INHALER|DEVICE)\b`)

	trailingParenPattern = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	multiplierPattern    = regexp.MustCompile(`^\s*(\d+)\s*[xX]\s*(.+)$`)

	simplePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s+([A-Za-z]+)\s+in\s+1\s+[A-Za-z][A-Za-z ,-]*$`),
		regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s+([A-Za-z]+)\s*,\s*[A-Za-z0-9][A-Za-z0-9 ,-]*?\s+in\s+1\s+[A-Za-z][A-Za-z ,-]*$`),
		regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s+([A-Za-z]+)\s*$`),
	}
)

// parseMultiPack handles carrier descriptions of the form
// "<N> <CONTAINER> in 1 <OUTER> / <qty> <UNIT> in 1 <CONTAINER>".
func parseMultiPack(description string) (domain.ParsedPackage, bool) {
	sep := strings.Index(description, "/")
	if sep < 0 {
		return domain.ParsedPackage{}, false
	}

	leading := strings.TrimSpace(description[:sep])
	inner := strings.TrimSpace(description[sep+1:])
	if inner == "" {
		return domain.ParsedPackage{}, false
	}

	parsed, ok := parseInner(inner)
	if !ok {
		return domain.ParsedPackage{}, false
	}

	count, ok := containerCount(leading)
	if !ok || count <= 1 {
		return parsed, true
	}

	parsed.PackageCount *= count
	parsed.TotalQuantity = parsed.Quantity * float64(parsed.PackageCount)
	return parsed, true
}

func parseInner(inner string) (domain.ParsedPackage, bool) {
	// Nested carriers multiply out through the multi-pack extractor first.
	if strings.Contains(inner, "/") {
		if parsed, ok := parseMultiPack(inner); ok {
			return parsed, true
		}
	}
	for _, extract := range innerCascade {
		if parsed, ok := extract(inner); ok {
			return parsed, true
		}
	}
	return domain.ParsedPackage{}, false
}

// measureTokens are quantity units that can never name a container; a
// leading "250 mg" or "5 mL" is a strength or volume, not a pack count.
var measureTokens = map[string]struct{}{
	"mg": {}, "mcg": {}, "g": {}, "kg": {},
	"ml": {}, "l": {},
	"unit": {}, "units": {},
}

// containerCount accepts only a full "<N> <CONTAINER> in 1 <OUTER>" leading
// expression; anything else does not contribute a pack count.
func containerCount(leading string) (int, bool) {
	m := leadingContainerPattern.FindStringSubmatch(leading)
	if m == nil {
		return 0, false
	}
	if _, measure := measureTokens[strings.ToLower(m[2])]; measure {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// parseLiquid handles "<qty> mL|L in 1 <container>". Descriptions carrying
// an explicit insulin signal are left for the insulin extractor.
func parseLiquid(description string) (domain.ParsedPackage, bool) {
	if insulinSignalPattern.MatchString(description) {
		return domain.ParsedPackage{}, false
	}
	m := volumeInContainerPattern.FindStringSubmatch(description)
	if m == nil {
		return domain.ParsedPackage{}, false
	}
	qty, err := strconv.ParseFloat(m[1], 64)
	if err != nil || qty <= 0 {
		return domain.ParsedPackage{}, false
	}
	unit := CanonicalUnit(m[2])
	volumeUnit := domain.UnitMilliliter
	if unit == "L" {
		volumeUnit = domain.UnitLiter
	}
	return domain.ParsedPackage{
		Quantity:      qty,
		Unit:          unit,
		PackageCount:  1,
		TotalQuantity: qty,
		Metadata: &domain.PackageMetadata{
			DosageForm: domain.FormLiquid,
			Volume:     qty,
			VolumeUnit: volumeUnit,
		},
	}, true
}

// parseInsulin converts a volume-in-container phrase times the U-<N>
// strength (default 100) into total dispense units, or falls back to a
// direct units-in-container phrase when no volume is present.
func parseInsulin(description string) (domain.ParsedPackage, bool) {
	if !insulinSignalPattern.MatchString(description) {
		return domain.ParsedPackage{}, false
	}

	strength := 100.0
	if m := insulinStrengthMarker.FindStringSubmatch(description); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			strength = v
		}
	}

	if m := volumeInContainerPattern.FindStringSubmatch(description); m != nil {
		volume, err := strconv.ParseFloat(m[1], 64)
		if err != nil || volume <= 0 {
			return domain.ParsedPackage{}, false
		}
		volumeUnit := domain.UnitMilliliter
		volumeML := volume
		if CanonicalUnit(m[2]) == "L" {
			volumeUnit = domain.UnitLiter
			volumeML = volume * 1000
		}
		total := volumeML * strength
		return domain.ParsedPackage{
			Quantity:      total,
			Unit:          "UNIT",
			PackageCount:  1,
			TotalQuantity: total,
			Metadata: &domain.PackageMetadata{
				DosageForm:      domain.FormInsulin,
				Volume:          volume,
				VolumeUnit:      volumeUnit,
				InsulinStrength: strength,
			},
		}, true
	}

	if m := unitsInContainerPattern.FindStringSubmatch(description); m != nil {
		qty, err := strconv.ParseFloat(m[1], 64)
		if err != nil || qty <= 0 {
			return domain.ParsedPackage{}, false
		}
		return domain.ParsedPackage{
			Quantity:      qty,
			Unit:          "UNIT",
			PackageCount:  1,
			TotalQuantity: qty,
			Metadata: &domain.PackageMetadata{
				DosageForm:      domain.FormInsulin,
				InsulinStrength: strength,
			},
		}, true
	}

	return domain.ParsedPackage{}, false
}

func parseInhaler(description string) (domain.ParsedPackage, bool) {
	m := actuationInContainerPattern.FindStringSubmatch(description)
	if m == nil {
		m = actuationPerDevicePattern.FindStringSubmatch(description)
	}
	if m == nil {
		return domain.ParsedPackage{}, false
	}
	qty, err := strconv.ParseFloat(m[1], 64)
	if err != nil || qty <= 0 {
		return domain.ParsedPackage{}, false
	}
	return domain.ParsedPackage{
		Quantity:      qty,
		Unit:          "ACTUATION",
		PackageCount:  1,
		TotalQuantity: qty,
		Metadata: &domain.PackageMetadata{
			DosageForm: domain.FormInhaler,
		},
	}, true
}

// parseSimple is the general fallback: strip a trailing parenthetical code,
// honor a leading "<N> x <qty> <UNIT>" multiplier, then try progressively
// looser quantity-unit patterns.
func parseSimple(description string) (domain.ParsedPackage, bool) {
	description = trailingParenPattern.ReplaceAllString(description, "")
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.ParsedPackage{}, false
	}

	count := 1
	if m := multiplierPattern.FindStringSubmatch(description); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			count = n
			description = strings.TrimSpace(m[2])
		}
	}

	for _, pattern := range simplePatterns {
		m := pattern.FindStringSubmatch(description)
		if m == nil {
			continue
		}
		qty, err := strconv.ParseFloat(m[1], 64)
		if err != nil || qty <= 0 {
			continue
		}
		return domain.ParsedPackage{
			Quantity:      qty,
			Unit:          CanonicalUnit(m[2]),
			PackageCount:  count,
			TotalQuantity: qty * float64(count),
		}, true
	}
	return domain.ParsedPackage{}, false
}
