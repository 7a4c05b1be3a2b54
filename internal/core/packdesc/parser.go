// Package packdesc parses free-text drug package descriptions from the
// package directory into structured quantities.
//
// The parser is a cascade of independent format extractors tried in a fixed
// order with first-success-wins semantics: multi-pack container, liquid
// volume, insulin, inhaler/actuation, then the general simple form. A plain
// volume phrase such as "10 mL in 1 VIAL" is genuinely ambiguous between a
// liquid medication and insulin at the default U-100 strength; this parser
// keeps the liquid-first precedence, and the liquid extractor declines only
// descriptions carrying an explicit insulin signal (a U-<N> marker or the
// word INSULIN) so that marked insulin packages are never misread as plain
// liquids.
package packdesc

import (
	"strings"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

type extractor func(description string) (domain.ParsedPackage, bool)

var cascade = []extractor{
	parseMultiPack,
	parseLiquid,
	parseInsulin,
	parseInhaler,
	parseSimple,
}

// innerCascade parses the sub-expression of a multi-pack description.
var innerCascade = []extractor{
	parseLiquid,
	parseInsulin,
	parseInhaler,
	parseSimple,
}

// Parse extracts a structured package from a directory description string.
// A failed parse returns false; absence is the expected outcome for
// descriptions no extractor understands.
func Parse(description string) (domain.ParsedPackage, bool) {
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.ParsedPackage{}, false
	}
	for _, extract := range cascade {
		if parsed, ok := extract(description); ok {
			return parsed, true
		}
	}
	return domain.ParsedPackage{}, false
}

// CanonicalUnit case-normalizes an extracted unit token: volume units
// keep their conventional spelling, everything else is upper-cased.
func CanonicalUnit(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ml":
		return "mL"
	case "l":
		return "L"
	default:
		return strings.ToUpper(strings.TrimSpace(s))
	}
}
