package sig

import (
	"math"
	"strconv"
	"strings"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

const (
	confidenceExact = 1.0
	confidenceWeak  = 0.4

	penaltyMissingDose      = 0.3
	penaltyMissingFrequency = 0.15
	penaltyMissingUnit      = 0.2

	// AcceptFloor is the minimum confidence for a deterministic parse to be
	// accepted at all.
	AcceptFloor = 0.7
)

// Normalize lowercases, collapses whitespace and strips punctuation other
// than decimal points inside numbers, range dashes and slashes. The same
// normalization keys the external parse cache.
func Normalize(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	runes := []rune(lower)
	var b strings.Builder
	b.Grow(len(lower))
	for i, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '/', r == '-':
			b.WriteRune(r)
		case r == '.' && i > 0 && i+1 < len(runes) && isDigit(runes[i-1]) && isDigit(runes[i+1]):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Parse applies the instruction grammar to raw text. It returns the parsed
// instruction and true when some rule produced an acceptable result, or a
// zero value and false otherwise. A miss is an expected outcome, not an
// error; callers fall through to the learned-model stage.
func Parse(text string) (domain.ParsedInstruction, bool) {
	norm := Normalize(text)
	if norm == "" {
		return domain.ParsedInstruction{}, false
	}

	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(norm)
		if m == nil {
			continue
		}

		confidence := confidenceExact

		dose, doseOK := parseAmount(m[r.doseGroup])
		if !doseOK {
			confidence -= penaltyMissingDose
		}

		var unit domain.Unit
		if r.unitGroup > 0 {
			if u, ok := CanonicalUnit(m[r.unitGroup]); ok {
				unit = u
			} else {
				confidence -= penaltyMissingUnit
			}
		} else {
			confidence -= penaltyMissingUnit
		}

		frequency, freqOK := resolveFrequency(r, m)
		if !freqOK {
			frequency = 1
			confidence -= penaltyMissingFrequency
		}

		if confidence < confidenceWeak {
			confidence = confidenceWeak
		}
		confidence = math.Min(1, math.Max(0, confidence))

		if !doseOK || dose <= 0 || frequency < 0 || unit == "" || confidence < AcceptFloor {
			continue
		}

		parsed := domain.ParsedInstruction{
			DoseAmount:  dose,
			DosesPerDay: frequency,
			Unit:        unit,
			Confidence:  confidence,
			Source:      domain.SourceGrammar,
		}
		annotate(&parsed, norm)
		return parsed, true
	}

	return domain.ParsedInstruction{}, false
}

// parseAmount handles single values and ranges; "a-b" resolves to the
// arithmetic mean.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if lo, hi, ok := splitRange(s); ok {
		return (lo + hi) / 2, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func splitRange(s string) (float64, float64, bool) {
	idx := strings.Index(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return 0, 0, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(s[:idx]), 64)
	if err != nil {
		return 0, 0, false
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(s[idx+1:]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

func resolveFrequency(r rule, m []string) (float64, bool) {
	switch r.freq {
	case frequencyFixed:
		return r.fixedFreq, true
	case frequencyCount:
		n, err := strconv.ParseFloat(m[r.freqGroup], 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	case frequencyWord:
		word := strings.Join(strings.Fields(m[r.freqGroup]), " ")
		n, ok := frequencyWords[word]
		return n, ok
	case frequencyLatin:
		token := strings.ReplaceAll(m[r.freqGroup], " ", "")
		n, ok := latinFrequencies[token]
		return n, ok
	case frequencyEveryHours:
		hours, err := strconv.ParseFloat(m[r.freqGroup], 64)
		if err != nil || hours <= 0 {
			return 0, false
		}
		// An interval longer than a day would floor to zero, which is
		// reserved for the as-needed encoding; leave it unresolved.
		freq := math.Floor(24 / hours)
		if freq < 1 {
			return 0, false
		}
		return freq, true
	default:
		return 0, false
	}
}
