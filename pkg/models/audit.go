package models

import "time"

// FixRecord is one applied-fix audit entry. Records carry enough to
// reconstruct what changed without consulting the working tree.
type FixRecord struct {
	Timestamp time.Time  `json:"timestamp"`
	FilePath  string     `json:"file_path"`
	RuleID    string     `json:"rule_id,omitempty"`
	Variable  string     `json:"variable,omitempty"`
	Action    ActionType `json:"action"`
	Details   string     `json:"details,omitempty"`
}

// DecisionRecord is one classification-decision audit entry, keyed the
// same way the classifier memoizes.
type DecisionRecord struct {
	Timestamp    time.Time    `json:"timestamp"`
	Key          string       `json:"key"`
	Variable     string       `json:"variable"`
	FilePath     string       `json:"file_path"`
	AnalysisType AnalysisType `json:"analysis_type"`
	Confidence   float64      `json:"confidence"`
	FromOracle   bool         `json:"from_oracle,omitempty"`
}
