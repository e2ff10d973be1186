// Package impact ranks the files affected by a change to one file. It
// walks the reverse dependency graph breadth-first and widens through
// shared identifiers, decaying a score per hop so near neighbors rank
// above distant ones.
package impact

import (
	"sort"

	"github.com/panbanda/lintmend/pkg/models"
)

// Default traversal constants. Heuristic values preserved for
// behavioral compatibility; tunable through options.
const (
	DefaultDependencyDecay = 0.9
	DefaultSharedDecay     = 0.8
	DefaultSharedBump      = 0.05
	DefaultBumpCap         = 0.95
)

// Graph supplies the structural facts the traversal needs: reverse
// import edges and the global identifier reference map. The project
// index satisfies this.
type Graph interface {
	// Dependents returns the files importing path directly.
	Dependents(path string) []string

	// DeclaredIdentifiers returns the names declared in path, without
	// duplicates.
	DeclaredIdentifiers(path string) []string

	// ReferencingFiles returns the files containing any reference to
	// name.
	ReferencingFiles(name string) []string
}

// Analyzer computes impact rankings over a Graph.
type Analyzer struct {
	graph           Graph
	dependencyDecay float64
	sharedDecay     float64
	sharedBump      float64
	bumpCap         float64
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithDependencyDecay sets the per-hop multiplier for reverse-dependency
// edges.
func WithDependencyDecay(decay float64) Option {
	return func(a *Analyzer) {
		a.dependencyDecay = decay
	}
}

// WithSharedDecay sets the per-hop multiplier for shared-identifier
// edges.
func WithSharedDecay(decay float64) Option {
	return func(a *Analyzer) {
		a.sharedDecay = decay
	}
}

// WithSharedBump sets the additive score bump applied when an already
// visited file gains another shared identifier, and the ceiling the
// bump saturates at.
func WithSharedBump(bump, cap float64) Option {
	return func(a *Analyzer) {
		a.sharedBump = bump
		a.bumpCap = cap
	}
}

// New creates an impact analyzer over graph.
func New(graph Graph, opts ...Option) *Analyzer {
	a := &Analyzer{
		graph:           graph,
		dependencyDecay: DefaultDependencyDecay,
		sharedDecay:     DefaultSharedDecay,
		sharedBump:      DefaultSharedBump,
		bumpCap:         DefaultBumpCap,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// node is the mutable traversal state for one visited file.
type node struct {
	path   string
	score  float64
	route  []string
	shared map[string]bool
}

// AffectedFiles walks outward from source and returns every reachable
// file ranked by impact score, highest first. The source itself is
// never part of the result. Visited files are never re-enqueued, which
// keeps the walk finite even when the import graph contains a cycle.
func (a *Analyzer) AffectedFiles(source string) *models.ImpactAnalysis {
	seed := &node{path: source, score: 1.0, route: []string{source}}

	visited := map[string]*node{source: seed}
	queue := []*node{seed}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dep := range a.graph.Dependents(current.path) {
			if _, seen := visited[dep]; seen {
				continue
			}
			next := &node{
				path:  dep,
				score: current.score * a.dependencyDecay,
				route: extend(current.route, dep),
			}
			visited[dep] = next
			queue = append(queue, next)
		}

		for _, name := range a.graph.DeclaredIdentifiers(current.path) {
			for _, ref := range a.graph.ReferencingFiles(name) {
				if ref == current.path || ref == source {
					continue
				}
				if seen, ok := visited[ref]; ok {
					// Another link into a file we already reached:
					// record the identifier and reward the extra
					// coupling without letting the score run away.
					if !seen.shared[name] {
						if seen.shared == nil {
							seen.shared = make(map[string]bool)
						}
						seen.shared[name] = true
						seen.score = min(seen.score+a.sharedBump, a.bumpCap)
					}
					continue
				}
				next := &node{
					path:   ref,
					score:  current.score * a.sharedDecay,
					route:  extend(current.route, ref),
					shared: map[string]bool{name: true},
				}
				visited[ref] = next
				queue = append(queue, next)
			}
		}
	}

	affected := make([]models.ImpactRecord, 0, len(visited)-1)
	for path, n := range visited {
		if path == source {
			continue
		}
		affected = append(affected, models.ImpactRecord{
			FilePath:              path,
			DirectDependencyCount: len(a.graph.Dependents(path)),
			SharedVariables:       sortedKeys(n.shared),
			ImpactScore:           n.score,
			ImpactPath:            n.route,
		})
	}

	sort.Slice(affected, func(i, j int) bool {
		if affected[i].ImpactScore != affected[j].ImpactScore {
			return affected[i].ImpactScore > affected[j].ImpactScore
		}
		return affected[i].FilePath < affected[j].FilePath
	})

	return models.NewImpactAnalysis(source, affected)
}

// extend copies route and appends next, so sibling branches never share
// backing arrays.
func extend(route []string, next string) []string {
	out := make([]string, len(route), len(route)+1)
	copy(out, route)
	return append(out, next)
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
