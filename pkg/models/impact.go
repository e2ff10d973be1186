package models

// ImpactRecord describes one file potentially affected by a change to
// another file. Scores decay multiplicatively per hop from the source
// and gain a small additive bump per shared identifier, capped below 1.
type ImpactRecord struct {
	FilePath string `json:"file_path"`

	// DirectDependencyCount is the number of files that import this
	// file directly (its fan-in in the reverse graph).
	DirectDependencyCount int `json:"direct_dependency_count"`

	SharedVariables []string `json:"shared_variables,omitempty"`
	ImpactScore     float64  `json:"impact_score"`

	// ImpactPath is the traversal path from the changed file to this
	// one, source first.
	ImpactPath []string `json:"impact_path"`
}

// ImpactAnalysis is the ranked result of an impact query.
type ImpactAnalysis struct {
	SourceFile string         `json:"source_file"`
	Affected   []ImpactRecord `json:"affected"`
	Summary    ImpactSummary  `json:"summary"`
}

// ImpactSummary provides aggregate statistics.
type ImpactSummary struct {
	TotalAffected   int     `json:"total_affected"`
	MaxScore        float64 `json:"max_score"`
	SharedVariables int     `json:"shared_variables"`
}

// NewImpactAnalysis assembles the wrapper and derives the summary.
func NewImpactAnalysis(source string, affected []ImpactRecord) *ImpactAnalysis {
	a := &ImpactAnalysis{SourceFile: source, Affected: affected}
	a.Summary.TotalAffected = len(affected)
	for _, rec := range affected {
		if rec.ImpactScore > a.Summary.MaxScore {
			a.Summary.MaxScore = rec.ImpactScore
		}
		a.Summary.SharedVariables += len(rec.SharedVariables)
	}
	return a
}
