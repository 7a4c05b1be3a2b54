package domain

// Unit is the closed dosing-unit vocabulary shared by instructions and
// quantity results.
type Unit string

const (
	UnitTablet     Unit = "tablet"
	UnitCapsule    Unit = "capsule"
	UnitPill       Unit = "pill"
	UnitMilliliter Unit = "mL"
	UnitLiter      Unit = "L"
	UnitUnit       Unit = "unit"
	UnitActuation  Unit = "actuation"
)

// UnitClass groups units that are interchangeable for package matching.
type UnitClass string

const (
	ClassSolid     UnitClass = "solid"
	ClassVolume    UnitClass = "volume"
	ClassCount     UnitClass = "count"
	ClassActuation UnitClass = "actuation"
	ClassUnknown   UnitClass = ""
)

func (u Unit) Class() UnitClass {
	switch u {
	case UnitTablet, UnitCapsule, UnitPill:
		return ClassSolid
	case UnitMilliliter, UnitLiter:
		return ClassVolume
	case UnitUnit:
		return ClassCount
	case UnitActuation:
		return ClassActuation
	default:
		return ClassUnknown
	}
}

// Discrete reports whether totals in this unit round to whole numbers.
func (u Unit) Discrete() bool {
	return u.Class() != ClassVolume && u.Class() != ClassUnknown
}

func KnownUnit(u Unit) bool {
	return u.Class() != ClassUnknown
}

type DosageForm string

const (
	FormTablet  DosageForm = "tablet"
	FormCapsule DosageForm = "capsule"
	FormLiquid  DosageForm = "liquid"
	FormInsulin DosageForm = "insulin-injectable"
	FormInhaler DosageForm = "inhaler"
	FormOther   DosageForm = "other"
)

// Concentration describes liquids dosed by mass per volume, e.g. 250 mg/5 mL.
type Concentration struct {
	Amount     float64 `json:"amount"`
	AmountUnit string  `json:"amount_unit"`
	Volume     float64 `json:"volume"`
	VolumeUnit Unit    `json:"volume_unit"`
}

func (c Concentration) Valid() bool {
	return c.Amount > 0 && c.AmountUnit != "" && c.Volume > 0 &&
		(c.VolumeUnit == UnitMilliliter || c.VolumeUnit == UnitLiter)
}

// ParseSource records which stage produced a parse, for logging and metrics.
type ParseSource string

const (
	SourceGrammar ParseSource = "grammar"
	SourceModel   ParseSource = "model"
	SourceRewrite ParseSource = "rewrite"
	SourceCache   ParseSource = "cache"
)

// ParsedInstruction is the structured form of a free-text dosing instruction.
// DosesPerDay of zero encodes an as-needed (PRN) instruction. The struct is
// immutable once produced by the parse pipeline.
type ParsedInstruction struct {
	DoseAmount  float64 `json:"dose_amount"`
	DosesPerDay float64 `json:"doses_per_day"`
	Unit        Unit    `json:"unit"`
	Confidence  float64 `json:"confidence"`

	DosageForm      DosageForm     `json:"dosage_form,omitempty"`
	Concentration   *Concentration `json:"concentration,omitempty"`
	InsulinStrength float64        `json:"insulin_strength,omitempty"`
	InhalerCapacity int            `json:"inhaler_capacity,omitempty"`

	Source ParseSource `json:"source,omitempty"`
}

func (p *ParsedInstruction) AsNeeded() bool {
	return p != nil && p.DosesPerDay == 0
}

// Valid checks the invariants every accepted parse must satisfy, regardless
// of which stage produced it.
func (p *ParsedInstruction) Valid() bool {
	if p == nil {
		return false
	}
	if p.DoseAmount <= 0 || p.DosesPerDay < 0 {
		return false
	}
	if !KnownUnit(p.Unit) {
		return false
	}
	return p.Confidence >= 0 && p.Confidence <= 1
}
