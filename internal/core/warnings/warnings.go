// Package warnings derives user-facing advisory flags from a selected
// candidate and its context.
package warnings

import (
	"fmt"
	"strings"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

// Overfill beyond this share of the target quantity draws a warning.
const overfillThreshold = 0.10

// Generate is a pure function of the selection, the required quantity, the
// parsed instruction and the source record. Warnings are emitted in a fixed
// order: inactive, overfill, underfill, dosage-form mismatch.
func Generate(
	selection domain.Candidate,
	target domain.QuantityResult,
	inst domain.ParsedInstruction,
	record domain.PackageRecord,
) []domain.Warning {
	var out []domain.Warning

	if !record.Active {
		out = append(out, domain.Warning{
			Type:     domain.WarningInactiveRecord,
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf("package %s is inactive in the directory", record.NDC),
		})
	}

	if target.Total > 0 && selection.Overfill/target.Total > overfillThreshold {
		out = append(out, domain.Warning{
			Type:     domain.WarningOverfill,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("selection exceeds the required quantity by %.4g %s (%.0f%%)",
				selection.Overfill, selection.Unit, selection.Overfill/target.Total*100),
		})
	}

	// Multi-pack selections never under-supply by construction.
	if selection.PackageCount == 1 && selection.Underfill > 0 {
		out = append(out, domain.Warning{
			Type:     domain.WarningUnderfill,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("selection falls short of the required quantity by %.4g %s",
				selection.Underfill, selection.Unit),
		})
	}

	if mismatchedForm(inst.Unit, record.DosageForm) {
		out = append(out, domain.Warning{
			Type:     domain.WarningFormMismatch,
			Severity: domain.SeverityWarning,
			Message: fmt.Sprintf("instruction is dosed in %s but the package form is %s",
				inst.Unit, record.DosageForm),
		})
	}

	return out
}

// mismatchedForm checks an instruction's unit category against the record's
// dosage-form label under a fixed category map. Unrecognized labels never
// warn.
func mismatchedForm(unit domain.Unit, formLabel string) bool {
	recordClass := formLabelClass(formLabel)
	if recordClass == domain.ClassUnknown {
		return false
	}
	unitClass := unit.Class()
	if unitClass == domain.ClassUnknown {
		return false
	}
	return unitClass != recordClass
}

func formLabelClass(label string) domain.UnitClass {
	label = strings.ToLower(label)
	switch {
	case label == "":
		return domain.ClassUnknown
	case strings.Contains(label, "tablet"), strings.Contains(label, "capsule"), strings.Contains(label, "caplet"):
		return domain.ClassSolid
	case strings.Contains(label, "solution"), strings.Contains(label, "suspension"),
		strings.Contains(label, "liquid"), strings.Contains(label, "syrup"),
		strings.Contains(label, "elixir"):
		return domain.ClassVolume
	case strings.Contains(label, "inject"), strings.Contains(label, "insulin"):
		return domain.ClassCount
	case strings.Contains(label, "aerosol"), strings.Contains(label, "inhal"), strings.Contains(label, "spray"):
		return domain.ClassActuation
	default:
		return domain.ClassUnknown
	}
}
