package models

// IngredientAnalysis is the response body for an ingredient analysis request.
type IngredientAnalysis struct {
	Ingredient string             `json:"ingredient"`
	Risk       string             `json:"risk"`
	Compound   *CompoundResponse  `json:"compound,omitempty"`
	Recalls    []RecallResponse   `json:"recalls,omitempty"`
	Summary    string             `json:"summary,omitempty"`
	Sources    []string           `json:"sources"`
	Degraded   []string           `json:"degraded,omitempty"`
	AnalyzedAt Timestamp          `json:"analyzedAt"`
}

// CompoundResponse describes chemical properties resolved for an ingredient.
type CompoundResponse struct {
	CID              int     `json:"cid"`
	IUPACName        string  `json:"iupacName,omitempty"`
	MolecularFormula string  `json:"molecularFormula,omitempty"`
	MolecularWeight  float64 `json:"molecularWeight,omitempty"`
}

// RecallResponse describes a single enforcement recall matching an ingredient.
type RecallResponse struct {
	RecallNumber       string     `json:"recallNumber"`
	Classification     string     `json:"classification"`
	Status             string     `json:"status"`
	Reason             string     `json:"reason,omitempty"`
	ProductDescription string     `json:"productDescription,omitempty"`
	InitiatedAt        *Timestamp `json:"initiatedAt,omitempty"`
}
