package domain

type WarningType string

const (
	WarningInactiveRecord WarningType = "inactive-record"
	WarningOverfill       WarningType = "overfill"
	WarningUnderfill      WarningType = "underfill"
	WarningFormMismatch   WarningType = "dosage-form-mismatch"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type Warning struct {
	Type     WarningType `json:"type"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}
