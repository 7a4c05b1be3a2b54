// Package quantity turns a parsed instruction and a days supply into the
// required total dispense quantity.
package quantity

import (
	"errors"
	"math"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

// Days supplies beyond a year are accepted but flagged for review.
const extendedSupplyDays = 365

// Calculate derives the required total quantity. Special dosage forms are
// honored: concentration-carrying liquids are converted to volume, inhalers
// with a known capacity additionally report the canisters needed, and
// as-needed instructions assume one dose per day with the assumption
// flagged. Invalid numeric inputs fail with a validation error naming the
// offending field.
func Calculate(inst domain.ParsedInstruction, daysSupply int) (domain.QuantityResult, error) {
	if inst.DoseAmount <= 0 {
		return domain.QuantityResult{}, domain.WrapError(domain.ErrInvalidInput, "calculate quantity", errors.New("dose_amount must be positive"))
	}
	if inst.DosesPerDay < 0 {
		return domain.QuantityResult{}, domain.WrapError(domain.ErrInvalidInput, "calculate quantity", errors.New("doses_per_day must not be negative"))
	}
	if daysSupply <= 0 {
		return domain.QuantityResult{}, domain.WrapError(domain.ErrInvalidInput, "calculate quantity", errors.New("days_supply must be positive"))
	}

	result := domain.QuantityResult{
		Unit:        inst.Unit,
		DoseAmount:  inst.DoseAmount,
		DosesPerDay: inst.DosesPerDay,
		DaysSupply:  daysSupply,
	}
	if daysSupply > extendedSupplyDays {
		result.ExtendedSupply = true
	}

	dosesPerDay := inst.DosesPerDay
	if inst.AsNeeded() {
		dosesPerDay = 1
		result.AssumedOnceDaily = true
	}

	if c := inst.Concentration; c != nil && c.Valid() {
		perDoseVolume := inst.DoseAmount / c.Amount * c.Volume
		result.Unit = c.VolumeUnit
		result.Total = roundForUnit(perDoseVolume*dosesPerDay*float64(daysSupply), result.Unit)
		return result, nil
	}

	total := inst.DoseAmount * dosesPerDay * float64(daysSupply)
	result.Total = roundForUnit(total, inst.Unit)

	if inst.DosageForm == domain.FormInhaler && inst.InhalerCapacity > 0 {
		result.CanistersNeeded = int(math.Ceil(result.Total / float64(inst.InhalerCapacity)))
	}

	return result, nil
}

// roundForUnit rounds discrete units to whole numbers and volumes to two
// decimal places.
func roundForUnit(total float64, unit domain.Unit) float64 {
	if unit.Discrete() {
		return math.Round(total)
	}
	return math.Round(total*100) / 100
}
