// Package depgraph computes centrality and cycle metrics over the
// resolved import graph. PageRank identifies hub files whose breakage
// ripples widest; Tarjan SCC surfaces groups of files that transitively
// import each other.
package depgraph

import (
	"sort"

	"github.com/panbanda/lintmend/pkg/models"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Analyzer computes graph metrics from a dependency graph.
type Analyzer struct {
	damping   float64
	tolerance float64
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithDamping sets the PageRank damping factor.
func WithDamping(damping float64) Option {
	return func(a *Analyzer) {
		a.damping = damping
	}
}

// WithTolerance sets the PageRank convergence tolerance.
func WithTolerance(tolerance float64) Option {
	return func(a *Analyzer) {
		a.tolerance = tolerance
	}
}

// New creates a new graph analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		damping:   0.85,
		tolerance: 1e-6,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// gonumGraph holds the gonum representation and ID mappings.
type gonumGraph struct {
	directed *simple.DirectedGraph
	pathToID map[string]int64 // file path -> gonum int64 ID
	idToPath map[int64]string // gonum int64 ID -> file path
}

// toGonumGraph converts a DependencyGraph to gonum graph types.
func toGonumGraph(graph *models.DependencyGraph) *gonumGraph {
	g := &gonumGraph{
		directed: simple.NewDirectedGraph(),
		pathToID: make(map[string]int64, len(graph.Nodes)),
		idToPath: make(map[int64]string, len(graph.Nodes)),
	}

	for i, node := range graph.Nodes {
		id := int64(i)
		g.pathToID[node.ID] = id
		g.idToPath[id] = node.ID
		g.directed.AddNode(simple.Node(id))
	}

	// Skip self-loops as gonum simple graphs don't support them.
	for _, edge := range graph.Edges {
		fromID, fromOK := g.pathToID[edge.From]
		toID, toOK := g.pathToID[edge.To]
		if fromOK && toOK && fromID != toID {
			g.directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
		}
	}

	return g
}

// CalculateMetrics computes PageRank, degree, and cycle metrics for a
// dependency graph. NodeMetrics come back sorted by PageRank descending
// with ties broken by file path, so the head of the slice is the
// project's hub files.
func (a *Analyzer) CalculateMetrics(graph *models.DependencyGraph) *models.GraphMetrics {
	metrics := &models.GraphMetrics{
		NodeMetrics: make([]models.NodeMetric, 0, len(graph.Nodes)),
		Summary: models.GraphSummary{
			TotalNodes: len(graph.Nodes),
			TotalEdges: len(graph.Edges),
		},
	}

	if len(graph.Nodes) == 0 {
		return metrics
	}

	inDegree := make(map[string]int, len(graph.Nodes))
	outDegree := make(map[string]int, len(graph.Nodes))
	for _, node := range graph.Nodes {
		inDegree[node.ID] = 0
		outDegree[node.ID] = 0
	}
	for _, edge := range graph.Edges {
		inDegree[edge.To]++
		outDegree[edge.From]++
	}

	gGraph := toGonumGraph(graph)
	pageRankMap := network.PageRank(gGraph.directed, a.damping, a.tolerance)

	for _, node := range graph.Nodes {
		metrics.NodeMetrics = append(metrics.NodeMetrics, models.NodeMetric{
			FilePath:  node.ID,
			PageRank:  pageRankMap[gGraph.pathToID[node.ID]],
			InDegree:  inDegree[node.ID],
			OutDegree: outDegree[node.ID],
		})
	}
	sort.Slice(metrics.NodeMetrics, func(i, j int) bool {
		if metrics.NodeMetrics[i].PageRank != metrics.NodeMetrics[j].PageRank {
			return metrics.NodeMetrics[i].PageRank > metrics.NodeMetrics[j].PageRank
		}
		return metrics.NodeMetrics[i].FilePath < metrics.NodeMetrics[j].FilePath
	})

	metrics.Cycles = cyclesOf(gGraph)
	metrics.Summary.CycleCount = len(metrics.Cycles)

	totalDegree := 0
	for _, node := range graph.Nodes {
		totalDegree += inDegree[node.ID] + outDegree[node.ID]
	}
	metrics.Summary.AvgDegree = float64(totalDegree) / float64(len(graph.Nodes))

	// Density = E / (V * (V-1)) for a directed graph.
	if len(graph.Nodes) > 1 {
		maxEdges := len(graph.Nodes) * (len(graph.Nodes) - 1)
		metrics.Summary.Density = float64(len(graph.Edges)) / float64(maxEdges)
	}

	return metrics
}

// DetectCycles uses Tarjan SCC to find groups of files that import each
// other. Single-node components are not cycles and are dropped.
func (a *Analyzer) DetectCycles(graph *models.DependencyGraph) []models.ImportCycle {
	if len(graph.Nodes) == 0 {
		return nil
	}
	return cyclesOf(toGonumGraph(graph))
}

// cyclesOf extracts multi-node strongly connected components, with
// members and cycles sorted for stable output.
func cyclesOf(g *gonumGraph) []models.ImportCycle {
	sccs := topo.TarjanSCC(g.directed)

	var cycles []models.ImportCycle
	for _, scc := range sccs {
		if len(scc) <= 1 {
			continue
		}
		members := make([]string, 0, len(scc))
		for _, node := range scc {
			members = append(members, g.idToPath[node.ID()])
		}
		sort.Strings(members)
		cycles = append(cycles, models.ImportCycle{Members: members})
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Members[0] < cycles[j].Members[0]
	})

	return cycles
}
