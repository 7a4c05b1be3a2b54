package ranking

import "math"

const (
	// Exact-match ties between single- and multi-pack candidates are broken
	// by this fixed differential, never by a secondary sort key.
	scoreExactSingle = 100.0
	scoreExactMulti  = 95.0

	nearBandWidth = 0.05

	overfillCeiling  = 89.0
	overfillFloor    = 70.0
	underfillCeiling = 79.0
	underfillFloor   = 60.0

	// PreferenceBoost is added, uncapped, to every candidate matching the
	// caller's preferred identifier. A boosted exact match scores above 100
	// so it sorts first even against an unboosted exact match.
	PreferenceBoost = 20.0

	exactEpsilon = 1e-9
)

// scoreCandidate maps a candidate total against the target quantity onto the
// 0-100 pre-boost scale.
func scoreCandidate(total, target float64, multiPack bool) float64 {
	deviation := math.Abs(total-target) / target

	if deviation <= exactEpsilon {
		if multiPack {
			return scoreExactMulti
		}
		return scoreExactSingle
	}

	if deviation <= nearBandWidth {
		ceiling := 99.0
		if multiPack {
			ceiling = 94.0
		}
		// Linear within the band: closeness 0 scores the ceiling, the band
		// edge scores ceiling-9.
		return ceiling - deviation/nearBandWidth*9
	}

	excess := (deviation - nearBandWidth) / (1 - nearBandWidth)
	if total > target {
		score := overfillCeiling - excess*(overfillCeiling-overfillFloor)
		return math.Max(overfillFloor, score)
	}
	score := underfillCeiling - excess*(underfillCeiling-underfillFloor)
	return math.Max(underfillFloor, score)
}
