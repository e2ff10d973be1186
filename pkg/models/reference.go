package models

// Reference is one occurrence of an identifier name somewhere in the
// indexed project. Names are global buckets, not scope-qualified:
// unrelated variables sharing a name across files land in the same
// bucket. This is a documented precision trade-off of the lexical
// approach.
type Reference struct {
	FilePath      string `json:"file_path"`
	Line          uint32 `json:"line"`
	IsDeclaration bool   `json:"is_declaration"`
	IsUsage       bool   `json:"is_usage"`
}

// SimilarIdentifier is a near-match for a name, enriched with how often
// the candidate is referenced across the project.
type SimilarIdentifier struct {
	Name           string  `json:"name"`
	Score          float64 `json:"score"`
	ReferenceCount int     `json:"reference_count"`
}
