package depgraph

import (
	"reflect"
	"testing"

	"github.com/panbanda/lintmend/pkg/models"
)

func TestNew(t *testing.T) {
	a := New()
	if a == nil {
		t.Fatal("New() returned nil")
	}
	if a.damping != 0.85 {
		t.Errorf("default damping = %v, want 0.85", a.damping)
	}
	if a.tolerance != 1e-6 {
		t.Errorf("default tolerance = %v, want 1e-6", a.tolerance)
	}
}

func TestNewWithOptions(t *testing.T) {
	a := New(
		WithDamping(0.9),
		WithTolerance(1e-4),
	)

	if a.damping != 0.9 {
		t.Errorf("damping = %v, want 0.9", a.damping)
	}
	if a.tolerance != 1e-4 {
		t.Errorf("tolerance = %v, want 1e-4", a.tolerance)
	}
}

func TestCalculateMetrics_Empty(t *testing.T) {
	a := New()

	metrics := a.CalculateMetrics(models.NewDependencyGraph())

	if metrics.Summary.TotalNodes != 0 {
		t.Errorf("TotalNodes = %d, want 0", metrics.Summary.TotalNodes)
	}
	if metrics.Summary.TotalEdges != 0 {
		t.Errorf("TotalEdges = %d, want 0", metrics.Summary.TotalEdges)
	}
	if len(metrics.NodeMetrics) != 0 {
		t.Errorf("len(NodeMetrics) = %d, want 0", len(metrics.NodeMetrics))
	}
	if len(metrics.Cycles) != 0 {
		t.Errorf("len(Cycles) = %d, want 0", len(metrics.Cycles))
	}
}

func TestCalculateMetrics_RanksHubs(t *testing.T) {
	a := New()

	// Three files all import util.ts, which imports nothing.
	g := models.NewDependencyGraph()
	for _, id := range []string{"a.ts", "b.ts", "c.ts", "util.ts"} {
		g.AddNode(models.GraphNode{ID: id, Name: id, Type: models.NodeFile, File: id})
	}
	g.AddEdge(models.GraphEdge{From: "a.ts", To: "util.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "b.ts", To: "util.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "c.ts", To: "util.ts", Type: models.EdgeImport})

	metrics := a.CalculateMetrics(g)

	if len(metrics.NodeMetrics) != 4 {
		t.Fatalf("len(NodeMetrics) = %d, want 4", len(metrics.NodeMetrics))
	}

	hub := metrics.NodeMetrics[0]
	if hub.FilePath != "util.ts" {
		t.Errorf("top file = %q, want %q", hub.FilePath, "util.ts")
	}
	if hub.InDegree != 3 {
		t.Errorf("hub InDegree = %d, want 3", hub.InDegree)
	}
	if hub.OutDegree != 0 {
		t.Errorf("hub OutDegree = %d, want 0", hub.OutDegree)
	}

	for i := 1; i < len(metrics.NodeMetrics); i++ {
		prev, cur := metrics.NodeMetrics[i-1], metrics.NodeMetrics[i]
		if cur.PageRank > prev.PageRank {
			t.Errorf("NodeMetrics not sorted: %q (%f) after %q (%f)",
				cur.FilePath, cur.PageRank, prev.FilePath, prev.PageRank)
		}
		if hub.PageRank <= cur.PageRank {
			t.Errorf("hub PageRank (%f) not above %q (%f)", hub.PageRank, cur.FilePath, cur.PageRank)
		}
	}
}

func TestCalculateMetrics_Summary(t *testing.T) {
	a := New()

	// Chain: a -> b -> c -> d.
	g := models.NewDependencyGraph()
	for _, id := range []string{"a.ts", "b.ts", "c.ts", "d.ts"} {
		g.AddNode(models.GraphNode{ID: id, Name: id, Type: models.NodeFile, File: id})
	}
	g.AddEdge(models.GraphEdge{From: "a.ts", To: "b.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "b.ts", To: "c.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "c.ts", To: "d.ts", Type: models.EdgeImport})

	metrics := a.CalculateMetrics(g)

	if metrics.Summary.TotalNodes != 4 {
		t.Errorf("TotalNodes = %d, want 4", metrics.Summary.TotalNodes)
	}
	if metrics.Summary.TotalEdges != 3 {
		t.Errorf("TotalEdges = %d, want 3", metrics.Summary.TotalEdges)
	}
	if metrics.Summary.AvgDegree != 1.5 {
		t.Errorf("AvgDegree = %v, want 1.5", metrics.Summary.AvgDegree)
	}
	if metrics.Summary.Density != 0.25 {
		t.Errorf("Density = %v, want 0.25", metrics.Summary.Density)
	}
	if metrics.Summary.CycleCount != 0 {
		t.Errorf("CycleCount = %d, want 0", metrics.Summary.CycleCount)
	}
}

func TestCalculateMetrics_CycleCount(t *testing.T) {
	a := New()

	g := models.NewDependencyGraph()
	for _, id := range []string{"a.ts", "b.ts", "c.ts"} {
		g.AddNode(models.GraphNode{ID: id, Name: id, Type: models.NodeFile, File: id})
	}
	g.AddEdge(models.GraphEdge{From: "a.ts", To: "b.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "b.ts", To: "a.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "c.ts", To: "a.ts", Type: models.EdgeImport})

	metrics := a.CalculateMetrics(g)

	if metrics.Summary.CycleCount != 1 {
		t.Fatalf("CycleCount = %d, want 1", metrics.Summary.CycleCount)
	}
	want := []string{"a.ts", "b.ts"}
	if !reflect.DeepEqual(metrics.Cycles[0].Members, want) {
		t.Errorf("cycle members = %v, want %v", metrics.Cycles[0].Members, want)
	}
}

func TestDetectCycles_NoCycles(t *testing.T) {
	a := New()

	g := models.NewDependencyGraph()
	for _, id := range []string{"a.ts", "b.ts", "c.ts"} {
		g.AddNode(models.GraphNode{ID: id, Name: id, Type: models.NodeFile, File: id})
	}
	g.AddEdge(models.GraphEdge{From: "a.ts", To: "b.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "b.ts", To: "c.ts", Type: models.EdgeImport})

	cycles := a.DetectCycles(g)

	if len(cycles) != 0 {
		t.Errorf("expected no cycles, got %d", len(cycles))
	}
}

func TestDetectCycles_MutualImports(t *testing.T) {
	a := New()

	g := models.NewDependencyGraph()
	for _, id := range []string{"user.ts", "session.ts"} {
		g.AddNode(models.GraphNode{ID: id, Name: id, Type: models.NodeFile, File: id})
	}
	g.AddEdge(models.GraphEdge{From: "user.ts", To: "session.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "session.ts", To: "user.ts", Type: models.EdgeImport})

	cycles := a.DetectCycles(g)

	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	want := []string{"session.ts", "user.ts"}
	if !reflect.DeepEqual(cycles[0].Members, want) {
		t.Errorf("cycle members = %v, want %v", cycles[0].Members, want)
	}
}

func TestDetectCycles_MultipleSorted(t *testing.T) {
	a := New()

	// Two disjoint two-file cycles, added in reverse order.
	g := models.NewDependencyGraph()
	for _, id := range []string{"x.ts", "y.ts", "a.ts", "b.ts"} {
		g.AddNode(models.GraphNode{ID: id, Name: id, Type: models.NodeFile, File: id})
	}
	g.AddEdge(models.GraphEdge{From: "x.ts", To: "y.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "y.ts", To: "x.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "a.ts", To: "b.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "b.ts", To: "a.ts", Type: models.EdgeImport})

	cycles := a.DetectCycles(g)

	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(cycles))
	}
	if cycles[0].Members[0] != "a.ts" {
		t.Errorf("first cycle starts with %q, want %q", cycles[0].Members[0], "a.ts")
	}
	if cycles[1].Members[0] != "x.ts" {
		t.Errorf("second cycle starts with %q, want %q", cycles[1].Members[0], "x.ts")
	}
}

func TestDetectCycles_SelfImportIgnored(t *testing.T) {
	a := New()

	g := models.NewDependencyGraph()
	g.AddNode(models.GraphNode{ID: "a.ts", Name: "a.ts", Type: models.NodeFile, File: "a.ts"})
	g.AddEdge(models.GraphEdge{From: "a.ts", To: "a.ts", Type: models.EdgeImport})

	cycles := a.DetectCycles(g)

	if len(cycles) != 0 {
		t.Errorf("expected no cycles, got %d", len(cycles))
	}
}

func TestCalculateMetrics_DanglingEdgeEndpoints(t *testing.T) {
	a := New()

	// Edges naming files outside the node set must not panic or leak
	// phantom entries into the metrics.
	g := models.NewDependencyGraph()
	g.AddNode(models.GraphNode{ID: "a.ts", Name: "a.ts", Type: models.NodeFile, File: "a.ts"})
	g.AddEdge(models.GraphEdge{From: "a.ts", To: "ghost.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "ghost.ts", To: "a.ts", Type: models.EdgeImport})

	metrics := a.CalculateMetrics(g)

	if len(metrics.NodeMetrics) != 1 {
		t.Fatalf("len(NodeMetrics) = %d, want 1", len(metrics.NodeMetrics))
	}
	if metrics.NodeMetrics[0].FilePath != "a.ts" {
		t.Errorf("FilePath = %q, want %q", metrics.NodeMetrics[0].FilePath, "a.ts")
	}
	if metrics.Summary.CycleCount != 0 {
		t.Errorf("CycleCount = %d, want 0", metrics.Summary.CycleCount)
	}
}

func TestCalculateMetrics_Deterministic(t *testing.T) {
	a := New()

	g := models.NewDependencyGraph()
	for _, id := range []string{"a.ts", "b.ts", "c.ts", "util.ts"} {
		g.AddNode(models.GraphNode{ID: id, Name: id, Type: models.NodeFile, File: id})
	}
	g.AddEdge(models.GraphEdge{From: "a.ts", To: "util.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "b.ts", To: "util.ts", Type: models.EdgeImport})
	g.AddEdge(models.GraphEdge{From: "c.ts", To: "b.ts", Type: models.EdgeImport})

	first := a.CalculateMetrics(g)
	second := a.CalculateMetrics(g)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated CalculateMetrics calls disagree")
	}
}
