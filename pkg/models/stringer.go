package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// AnalysisType
func (a AnalysisType) String() string { return string(a) }

// ActionType
func (a ActionType) String() string { return string(a) }

// NodeType
func (n NodeType) String() string { return string(n) }

// EdgeType
func (e EdgeType) String() string { return string(e) }
