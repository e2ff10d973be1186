package models

// AnalysisType classifies what an unused-identifier diagnostic actually
// represents. The set is closed: oracle replies carrying anything else
// are rejected during validation.
type AnalysisType string

const (
	AnalysisGenuineUnused          AnalysisType = "GENUINE_UNUSED"
	AnalysisTypo                   AnalysisType = "TYPO"
	AnalysisRefactorLeftover       AnalysisType = "REFACTOR_LEFTOVER"
	AnalysisIntentionalUnused      AnalysisType = "INTENTIONAL_UNUSED"
	AnalysisRefactorIssue          AnalysisType = "REFACTOR_ISSUE"
	AnalysisParameterMismatch      AnalysisType = "PARAMETER_MISMATCH"
	AnalysisTypeDefinitionMismatch AnalysisType = "TYPE_DEFINITION_MISMATCH"
	AnalysisUnknown                AnalysisType = "UNKNOWN"
)

// ValidAnalysisType reports whether s is a member of the closed set.
func ValidAnalysisType(s string) bool {
	switch AnalysisType(s) {
	case AnalysisGenuineUnused, AnalysisTypo, AnalysisRefactorLeftover,
		AnalysisIntentionalUnused, AnalysisRefactorIssue,
		AnalysisParameterMismatch, AnalysisTypeDefinitionMismatch,
		AnalysisUnknown:
		return true
	}
	return false
}

// ActionType is a remediation the assistant can suggest for an unused
// identifier.
type ActionType string

const (
	ActionRename ActionType = "RENAME"
	ActionPrefix ActionType = "PREFIX"
	ActionRemove ActionType = "REMOVE"
	ActionKeep   ActionType = "KEEP"
	ActionReview ActionType = "REVIEW"
)

// ValidActionType reports whether s is a member of the closed set.
func ValidActionType(s string) bool {
	switch ActionType(s) {
	case ActionRename, ActionPrefix, ActionRemove, ActionKeep, ActionReview:
		return true
	}
	return false
}

// PossibleAction is one ranked remediation suggestion.
type PossibleAction struct {
	Action      ActionType `json:"action"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"`
}

// RecommendedAction is the top suggestion with optional detail, e.g.
// the rename target.
type RecommendedAction struct {
	Action  ActionType `json:"action"`
	Details string     `json:"details,omitempty"`
}

// ClassificationResult is the full verdict for one unused-identifier
// diagnostic.
type ClassificationResult struct {
	VariableName      string            `json:"variable_name"`
	FilePath          string            `json:"file_path"`
	AnalysisType      AnalysisType      `json:"analysis_type"`
	Confidence        float64           `json:"confidence"`
	Explanation       string            `json:"explanation"`
	Reasoning         []string          `json:"reasoning,omitempty"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
	PossibleActions   []PossibleAction  `json:"possible_actions"`
	FromOracle        bool              `json:"from_oracle,omitempty"`
}

// AddReasoning appends one reasoning step, preserving order.
func (r *ClassificationResult) AddReasoning(step string) {
	r.Reasoning = append(r.Reasoning, step)
}
