// Package ingredient provides the cosmetics-ingredient analysis domain.
package ingredient

import "time"

// RiskLevel classifies how concerning an ingredient is.
type RiskLevel string

// Risk levels, from benign to concerning.
const (
	RiskUnknown  RiskLevel = "UNKNOWN"
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
)

// CompoundProperties holds chemical identity data for an ingredient.
type CompoundProperties struct {
	// CID is the PubChem compound identifier.
	CID int

	// IUPACName is the systematic chemical name.
	IUPACName string

	// MolecularFormula is the Hill-notation formula.
	MolecularFormula string

	// MolecularWeight is in g/mol.
	MolecularWeight float64
}

// Recall is a regulatory enforcement report mentioning an ingredient.
type Recall struct {
	// RecallNumber is the agency's report identifier.
	RecallNumber string

	// Classification is the recall class (Class I is the most serious).
	Classification string

	// Status is the current enforcement status (e.g. Ongoing, Terminated).
	Status string

	// Reason describes why the product was recalled.
	Reason string

	// ProductDescription describes the recalled product.
	ProductDescription string

	// InitiatedAt is when the recall was initiated.
	InitiatedAt time.Time
}

// Analysis aggregates provider lookups for a single ingredient. Providers
// that were unavailable or failed are listed in Degraded; the remaining
// fields reflect whatever data could be gathered.
type Analysis struct {
	Ingredient string
	Risk       RiskLevel
	Compound   *CompoundProperties
	Recalls    []Recall
	Summary    string
	Sources    []string
	Degraded   []string
	AnalyzedAt time.Time
}
