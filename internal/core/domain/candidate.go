package domain

// Candidate is one scored package configuration. Invariant: Underfill is
// always zero when PackageCount > 1, because multi-pack candidates are sized
// up to cover the target by construction.
type Candidate struct {
	NDC           string  `json:"ndc"`
	PackageSize   float64 `json:"package_size"`
	PackageCount  int     `json:"package_count"`
	TotalQuantity float64 `json:"total_quantity"`
	Overfill      float64 `json:"overfill"`
	Underfill     float64 `json:"underfill"`
	MatchScore    float64 `json:"match_score"`

	Unit         string `json:"unit"`
	Description  string `json:"description,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	DosageForm   string `json:"dosage_form,omitempty"`
}

// RankedSelection is a candidate together with its advisory warnings.
type RankedSelection struct {
	Candidate
	Warnings []Warning `json:"warnings,omitempty"`
}

type RecommendationRequest struct {
	Instruction  string `json:"instruction"`
	DaysSupply   int    `json:"days_supply"`
	DrugQuery    string `json:"drug"`
	PreferredNDC string `json:"preferred_ndc,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type Recommendation struct {
	Instruction ParsedInstruction `json:"instruction"`
	Required    QuantityResult    `json:"required"`
	Selections  []RankedSelection `json:"selections"`
	Warnings    []Warning         `json:"warnings,omitempty"`
}
