package docsynth

// ConflictType classifies a discrepancy between sources.
type ConflictType string

// Conflict types.
const (
	MissingInDocs       ConflictType = "missing_in_docs"
	MissingInCode       ConflictType = "missing_in_code"
	SignatureMismatch   ConflictType = "signature_mismatch"
	DescriptionMismatch ConflictType = "description_mismatch"
)

// Severity ranks a conflict.
type Severity string

// Severities, from most to least severe.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities: high is 3, low is 1, unknown is 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Cap returns the lesser of s and max.
func (s Severity) Cap(max Severity) Severity {
	if s.Rank() > max.Rank() {
		return max
	}
	return s
}

// ConflictRecord is a discrepancy found for one identity.
// DocVersion and CodeVersion are empty when that side is absent.
type ConflictRecord struct {
	IdentityKey   string       `json:"identityKey"`
	Type          ConflictType `json:"type"`
	Severity      Severity     `json:"severity"`
	DocVersion    string       `json:"docVersion,omitempty"`
	CodeVersion   string       `json:"codeVersion,omitempty"`
	LowConfidence bool         `json:"lowConfidence,omitempty"`
}
