package domain

// PackageMetadata carries extra attributes recovered by the special-form
// package description extractors.
type PackageMetadata struct {
	DosageForm      DosageForm `json:"dosage_form,omitempty"`
	Volume          float64    `json:"volume,omitempty"`
	VolumeUnit      Unit       `json:"volume_unit,omitempty"`
	InsulinStrength float64    `json:"insulin_strength,omitempty"`
}

// ParsedPackage is the structured form of a directory package description.
// Invariant: TotalQuantity >= Quantity > 0 and PackageCount >= 1 whenever a
// parse succeeds; a failed parse yields no ParsedPackage at all.
type ParsedPackage struct {
	Quantity      float64          `json:"quantity"`
	Unit          string           `json:"unit"`
	PackageCount  int              `json:"package_count"`
	TotalQuantity float64          `json:"total_quantity"`
	Metadata      *PackageMetadata `json:"metadata,omitempty"`
}

// PackageRecord is a directory entry as resolved by the external package
// directory. Read-only to the core.
type PackageRecord struct {
	NDC          string   `json:"ndc"`
	DrugName     string   `json:"drug_name"`
	Description  string   `json:"description"`
	PackageSize  float64  `json:"package_size,omitempty"`
	Unit         string   `json:"unit,omitempty"`
	Active       bool     `json:"active"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	DosageForm   string   `json:"dosage_form,omitempty"`
	Packagings   []string `json:"packagings,omitempty"`
}

// QuantityResult is the required total quantity derived from a parsed
// instruction and a days supply, together with its calculation trace.
type QuantityResult struct {
	Total float64 `json:"total"`
	Unit  Unit    `json:"unit"`

	DoseAmount  float64 `json:"dose_amount"`
	DosesPerDay float64 `json:"doses_per_day"`
	DaysSupply  int     `json:"days_supply"`

	AssumedOnceDaily bool `json:"assumed_once_daily,omitempty"`
	ExtendedSupply   bool `json:"extended_supply,omitempty"`
	CanistersNeeded  int  `json:"canisters_needed,omitempty"`
}
