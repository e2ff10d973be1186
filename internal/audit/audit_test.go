package audit

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/panbanda/lintmend/pkg/models"
)

func TestAppendFixRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	first := models.FixRecord{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		FilePath:  "src/app.ts",
		RuleID:    "no-unused-vars",
		Variable:  "userData",
		Action:    models.ActionRename,
		Details:   "user_data",
	}
	second := models.FixRecord{
		Timestamp: time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
		FilePath:  "src/util.ts",
		Variable:  "orphanTotal",
		Action:    models.ActionRemove,
	}

	if err := store.AppendFix(first); err != nil {
		t.Fatalf("AppendFix: %v", err)
	}
	if err := store.AppendFix(second); err != nil {
		t.Fatalf("AppendFix: %v", err)
	}

	fixes, err := store.Fixes()
	if err != nil {
		t.Fatalf("Fixes: %v", err)
	}
	if len(fixes) != 2 {
		t.Fatalf("len(fixes) = %d, want 2", len(fixes))
	}
	if fixes[0].Variable != "userData" || fixes[0].Action != models.ActionRename || fixes[0].Details != "user_data" {
		t.Errorf("first fix = %+v", fixes[0])
	}
	if !fixes[0].Timestamp.Equal(first.Timestamp) {
		t.Errorf("timestamp = %v, want %v", fixes[0].Timestamp, first.Timestamp)
	}
	if fixes[1].Variable != "orphanTotal" {
		t.Errorf("second fix = %+v", fixes[1])
	}
}

func TestAppendDecisionRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	rec := models.DecisionRecord{
		Timestamp:    time.Now().UTC(),
		Key:          "userData|src/app.ts|unused",
		Variable:     "userData",
		FilePath:     "src/app.ts",
		AnalysisType: models.AnalysisTypo,
		Confidence:   0.92,
		FromOracle:   true,
	}
	if err := store.AppendDecision(rec); err != nil {
		t.Fatalf("AppendDecision: %v", err)
	}

	decisions, err := store.Decisions()
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("len(decisions) = %d, want 1", len(decisions))
	}
	got := decisions[0]
	if got.AnalysisType != models.AnalysisTypo || got.Confidence != 0.92 || !got.FromOracle {
		t.Errorf("decision = %+v", got)
	}
}

func TestLoadMissingHistories(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	fixes, err := store.Fixes()
	if err != nil {
		t.Fatalf("Fixes: %v", err)
	}
	if len(fixes) != 0 {
		t.Errorf("fixes = %v, want empty", fixes)
	}

	decisions, err := store.Decisions()
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(decisions) != 0 {
		t.Errorf("decisions = %v, want empty", decisions)
	}
}

func TestAppendRecoversFromCorruptHistory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "fixes.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := store.AppendFix(models.FixRecord{FilePath: "a.ts", Action: models.ActionRemove}); err != nil {
		t.Fatalf("AppendFix after corruption: %v", err)
	}

	fixes, err := store.Fixes()
	if err != nil {
		t.Fatalf("Fixes: %v", err)
	}
	if len(fixes) != 1 {
		t.Fatalf("len(fixes) = %d, want 1 (corrupt history replaced)", len(fixes))
	}
}

func TestConcurrentAppends(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.AppendFix(models.FixRecord{FilePath: "a.ts", Action: models.ActionPrefix})
		}()
	}
	wg.Wait()

	fixes, err := store.Fixes()
	if err != nil {
		t.Fatalf("Fixes: %v", err)
	}
	if len(fixes) != 10 {
		t.Errorf("len(fixes) = %d, want 10", len(fixes))
	}
}
