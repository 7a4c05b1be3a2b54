package sig

import (
	"regexp"
	"strings"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

// The instruction grammar is an ordered list of rule records evaluated
// against the normalized text. The first rule whose pattern matches wins;
// there is no scoring across multiple matching rules.

type frequencyKind int

const (
	frequencyFixed frequencyKind = iota
	frequencyCount
	frequencyWord
	frequencyLatin
	frequencyEveryHours
	frequencyUnresolved
)

type rule struct {
	name      string
	pattern   *regexp.Regexp
	doseGroup int
	unitGroup int
	freq      frequencyKind
	freqGroup int
	fixedFreq float64
}

const (
	amountExpr = `(\d+(?:\.\d+)?(?:\s*-\s*\d+(?:\.\d+)?)?)`
	unitExpr   = `(tablets?|tabs?|capsules?|caps?|pills?|milliliters?|millilitres?|ml|cc|liters?|litres?|l|units?|iu|puffs?|sprays?|inhalations?|actuations?)`
	latinExpr  = `(q\s?d|q\s?hs|q\s?am|q\s?pm|b\s?i\s?d|t\s?i\s?d|q\s?i\s?d)`
)

// rules are ordered highest priority first.
var rules = []rule{
	{
		name:      "every-n-hours",
		pattern:   regexp.MustCompile(amountExpr + `\s*` + unitExpr + `\b.*?\bevery\s+(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)\b`),
		doseGroup: 1, unitGroup: 2,
		freq: frequencyEveryHours, freqGroup: 3,
	},
	{
		name:      "n-times-daily",
		pattern:   regexp.MustCompile(amountExpr + `\s*` + unitExpr + `\b.*?\b(\d+)\s*(?:times?|x)\s*(?:a\s+|per\s+|each\s+)?(?:day|daily)\b`),
		doseGroup: 1, unitGroup: 2,
		freq: frequencyCount, freqGroup: 3,
	},
	{
		name:      "frequency-word",
		pattern:   regexp.MustCompile(amountExpr + `\s*` + unitExpr + `\b.*?\b(once|twice|thrice|three times|four times)(?:\s+(?:a|per|each)\s+day|\s+daily)?\b`),
		doseGroup: 1, unitGroup: 2,
		freq: frequencyWord, freqGroup: 3,
	},
	{
		name:      "latin-abbreviation",
		pattern:   regexp.MustCompile(amountExpr + `\s*` + unitExpr + `\b.*?\b` + latinExpr + `\b`),
		doseGroup: 1, unitGroup: 2,
		freq: frequencyLatin, freqGroup: 3,
	},
	{
		name:      "as-needed",
		pattern:   regexp.MustCompile(amountExpr + `\s*` + unitExpr + `\b.*?\b(?:as\s+needed|prn)\b`),
		doseGroup: 1, unitGroup: 2,
		freq: frequencyFixed, fixedFreq: 0,
	},
	{
		name:      "once-daily-phrase",
		pattern:   regexp.MustCompile(amountExpr + `\s*` + unitExpr + `\b.*?\b(?:daily|every\s+day|each\s+day|every\s+morning|every\s+evening|every\s+night|at\s+bedtime|nightly)\b`),
		doseGroup: 1, unitGroup: 2,
		freq: frequencyFixed, fixedFreq: 1,
	},
	{
		name:      "amount-unit-only",
		pattern:   regexp.MustCompile(amountExpr + `\s*` + unitExpr + `\b`),
		doseGroup: 1, unitGroup: 2,
		freq: frequencyUnresolved,
	},
}

// canonicalUnits maps surface spellings to the closed unit vocabulary.
var canonicalUnits = map[string]domain.Unit{
	"tab": domain.UnitTablet, "tabs": domain.UnitTablet,
	"tablet": domain.UnitTablet, "tablets": domain.UnitTablet,
	"cap": domain.UnitCapsule, "caps": domain.UnitCapsule,
	"capsule": domain.UnitCapsule, "capsules": domain.UnitCapsule,
	"pill": domain.UnitPill, "pills": domain.UnitPill,
	"ml": domain.UnitMilliliter, "cc": domain.UnitMilliliter,
	"milliliter": domain.UnitMilliliter, "milliliters": domain.UnitMilliliter,
	"millilitre": domain.UnitMilliliter, "millilitres": domain.UnitMilliliter,
	"l": domain.UnitLiter, "liter": domain.UnitLiter, "liters": domain.UnitLiter,
	"litre": domain.UnitLiter, "litres": domain.UnitLiter,
	"unit": domain.UnitUnit, "units": domain.UnitUnit, "iu": domain.UnitUnit,
	"puff": domain.UnitActuation, "puffs": domain.UnitActuation,
	"spray": domain.UnitActuation, "sprays": domain.UnitActuation,
	"inhalation": domain.UnitActuation, "inhalations": domain.UnitActuation,
	"actuation": domain.UnitActuation, "actuations": domain.UnitActuation,
}

var frequencyWords = map[string]float64{
	"once":        1,
	"twice":       2,
	"thrice":      3,
	"three times": 3,
	"four times":  4,
}

var latinFrequencies = map[string]float64{
	"qd":  1,
	"qhs": 1,
	"qam": 1,
	"qpm": 1,
	"bid": 2,
	"tid": 3,
	"qid": 4,
}

// CanonicalUnit resolves a surface unit spelling to the closed vocabulary.
// Canonical spellings resolve to themselves.
func CanonicalUnit(s string) (domain.Unit, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	if u, ok := canonicalUnits[key]; ok {
		return u, true
	}
	return "", false
}
