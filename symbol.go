package docsynth

import "strings"

// Origin identifies which kind of source produced a symbol.
type Origin string

// Symbol origins.
const (
	OriginDoc  Origin = "doc"
	OriginCode Origin = "code"
	OriginPDF  Origin = "pdf"
)

// IsDoc reports whether the origin describes documentation rather than code.
func (o Origin) IsDoc() bool {
	return o == OriginDoc || o == OriginPDF
}

// Param is a single parameter of a function signature.
// Type is empty when the source does not declare one.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// RawFact is a symbol as reported by an extractor, before identity
// resolution.
type RawFact struct {
	Origin      Origin   `json:"origin"`
	Module      string   `json:"module,omitempty"` // empty when the source does not qualify the name
	Name        string   `json:"name"`
	Params      []Param  `json:"params"`
	Returns     string   `json:"returns,omitempty"`
	Description string   `json:"description,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Location    string   `json:"location"` // URL, file path or pdf page
}

// QualifiedName returns Module.Name, or Name when the module is unknown.
func (f *RawFact) QualifiedName() string {
	if f.Module == "" {
		return f.Name
	}
	return f.Module + "." + f.Name
}

// Signature renders the fact as "name(a: T, b) -> R".
func (f *RawFact) Signature() string {
	var sb strings.Builder
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		if p.Type != "" {
			sb.WriteString(": ")
			sb.WriteString(p.Type)
		}
	}
	sb.WriteByte(')')
	if f.Returns != "" {
		sb.WriteString(" -> ")
		sb.WriteString(f.Returns)
	}
	return sb.String()
}

// SymbolRecord is a normalized symbol keyed by its cross-source identity.
type SymbolRecord struct {
	IdentityKey        string   `json:"identityKey"`
	Origin             Origin   `json:"origin"`
	Name               string   `json:"name"`
	Signature          string   `json:"signature"`
	Description        string   `json:"description,omitempty"`
	Examples           []string `json:"examples,omitempty"`
	Location           string   `json:"location"`
	LowConfidenceMatch bool     `json:"lowConfidenceMatch"`
}
