// Package ranking generates, scores and orders candidate package
// configurations against a required total quantity.
package ranking

import (
	"math"
	"sort"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
	"github.com/pharmlane/rx-pack-advisor/internal/core/packdesc"
)

const (
	// MaxPackagesPerCandidate bounds multi-pack generation against
	// pathological inputs such as a package size of 1 and a huge target.
	MaxPackagesPerCandidate = 10

	DefaultLimit = 5
)

type Options struct {
	PreferredNDC string
	Limit        int
}

// Result is the ranked candidate set. Inactive carries the records excluded
// from generation so the caller can surface advisories for them.
type Result struct {
	Selections []domain.Candidate
	Inactive   []domain.PackageRecord
}

// Rank generates up to two candidates per active record (single-pack and a
// covering multi-pack), discards unit-incompatible ones, scores the rest and
// returns the top candidates in descending score order. The sort is stable:
// equal scores retain record order. Anomalies (no records, non-positive
// target, nothing compatible) yield an empty result, not an error.
func Rank(records []domain.PackageRecord, target domain.QuantityResult, opts Options) Result {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var result Result
	if target.Total <= 0 {
		return result
	}

	for _, rec := range records {
		if !rec.Active {
			result.Inactive = append(result.Inactive, rec)
			continue
		}

		pkg, ok := parseRecord(rec)
		if !ok {
			continue
		}
		factor, ok := unitConversion(pkg.Unit, target.Unit)
		if !ok {
			continue
		}
		size := pkg.TotalQuantity * factor
		if size <= 0 {
			continue
		}

		unit := pkg.Unit
		if factor != 1 {
			unit = string(target.Unit)
		}

		single := newCandidate(rec, unit, size, 1)
		single.Overfill = math.Max(0, size-target.Total)
		single.Underfill = math.Max(0, target.Total-size)
		single.MatchScore = scoreCandidate(size, target.Total, false)
		result.Selections = append(result.Selections, single)

		count := int(math.Ceil(target.Total / size))
		if count > 1 && count <= MaxPackagesPerCandidate {
			multi := newCandidate(rec, unit, size, count)
			multi.Overfill = math.Max(0, multi.TotalQuantity-target.Total)
			multi.MatchScore = scoreCandidate(multi.TotalQuantity, target.Total, true)
			result.Selections = append(result.Selections, multi)
		}
	}

	if preferred := NormalizeNDC(opts.PreferredNDC); preferred != "" {
		for i := range result.Selections {
			if NormalizeNDC(result.Selections[i].NDC) == preferred {
				result.Selections[i].MatchScore += PreferenceBoost
			}
		}
	}

	sort.SliceStable(result.Selections, func(i, j int) bool {
		return result.Selections[i].MatchScore > result.Selections[j].MatchScore
	})

	if len(result.Selections) > limit {
		result.Selections = result.Selections[:limit]
	}
	return result
}

func newCandidate(rec domain.PackageRecord, unit string, size float64, count int) domain.Candidate {
	return domain.Candidate{
		NDC:           rec.NDC,
		PackageSize:   size,
		PackageCount:  count,
		TotalQuantity: size * float64(count),
		Unit:          unit,
		Description:   rec.Description,
		Manufacturer:  rec.Manufacturer,
		DosageForm:    rec.DosageForm,
	}
}

// parseRecord resolves a record's package size: the description first, then
// any nested packaging entries, then a literal pre-known size.
func parseRecord(rec domain.PackageRecord) (domain.ParsedPackage, bool) {
	if rec.Description != "" {
		if pkg, ok := packdesc.Parse(rec.Description); ok {
			return pkg, true
		}
	}
	for _, nested := range rec.Packagings {
		if pkg, ok := packdesc.Parse(nested); ok {
			return pkg, true
		}
	}
	if rec.PackageSize > 0 {
		return domain.ParsedPackage{
			Quantity:      rec.PackageSize,
			Unit:          packdesc.CanonicalUnit(rec.Unit),
			PackageCount:  1,
			TotalQuantity: rec.PackageSize,
		}, true
	}
	return domain.ParsedPackage{}, false
}
