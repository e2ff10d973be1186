package models

import "testing"

func TestStringMethods(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "analysis type", got: AnalysisGenuineUnused.String(), want: "GENUINE_UNUSED"},
		{name: "action type", got: ActionRename.String(), want: "RENAME"},
		{name: "node type", got: NodeFile.String(), want: "file"},
		{name: "edge type", got: EdgeImport.String(), want: "import"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("String() = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestValidAnalysisType(t *testing.T) {
	for _, s := range []string{"GENUINE_UNUSED", "TYPO", "REFACTOR_LEFTOVER", "INTENTIONAL_UNUSED",
		"REFACTOR_ISSUE", "PARAMETER_MISMATCH", "TYPE_DEFINITION_MISMATCH", "UNKNOWN"} {
		if !ValidAnalysisType(s) {
			t.Errorf("ValidAnalysisType(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "typo", "DEAD_CODE", "GENUINE"} {
		if ValidAnalysisType(s) {
			t.Errorf("ValidAnalysisType(%q) = true, want false", s)
		}
	}
}

func TestValidActionType(t *testing.T) {
	for _, s := range []string{"RENAME", "PREFIX", "REMOVE", "KEEP", "REVIEW"} {
		if !ValidActionType(s) {
			t.Errorf("ValidActionType(%q) = false, want true", s)
		}
	}
	if ValidActionType("DELETE") {
		t.Error("ValidActionType(DELETE) = true, want false")
	}
}

func TestNewImpactAnalysis(t *testing.T) {
	affected := []ImpactRecord{
		{FilePath: "b.ts", ImpactScore: 0.95, SharedVariables: []string{"helperFunction"}},
		{FilePath: "c.ts", ImpactScore: 0.81},
	}

	a := NewImpactAnalysis("a.ts", affected)

	if a.Summary.TotalAffected != 2 {
		t.Errorf("TotalAffected = %d, want 2", a.Summary.TotalAffected)
	}
	if a.Summary.MaxScore != 0.95 {
		t.Errorf("MaxScore = %v, want 0.95", a.Summary.MaxScore)
	}
	if a.Summary.SharedVariables != 1 {
		t.Errorf("SharedVariables = %d, want 1", a.Summary.SharedVariables)
	}
}
