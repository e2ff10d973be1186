package index

import (
	"path"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/lintmend/pkg/models"
)

// aliasRule is one configured import-path alias, e.g. "@/" -> "src/".
type aliasRule struct {
	prefix string
	target string
}

// buildGraph resolves every import edge against the tracked file set and
// fills the forward graph and its transpose together. Bare module
// specifiers (external packages) stay unresolved by design. Returns the
// number of distinct edges.
func (idx *Index) buildGraph() int {
	aliases := idx.sortedAliases()
	edges := 0

	for _, rec := range idx.byID {
		for _, imp := range rec.imports {
			target, ok := idx.resolveImport(rec.path, imp.Source, aliases)
			if !ok {
				continue
			}
			dep := idx.files[target]
			if dep.id == rec.id {
				continue
			}

			fwd := idx.forward[rec.id]
			if fwd == nil {
				fwd = roaring.New()
				idx.forward[rec.id] = fwd
			}
			if fwd.Contains(dep.id) {
				continue
			}
			fwd.Add(dep.id)

			rev := idx.reverse[dep.id]
			if rev == nil {
				rev = roaring.New()
				idx.reverse[dep.id] = rev
			}
			rev.Add(rec.id)
			edges++
		}
	}

	return edges
}

// resolveImport maps an import specifier in fromPath to a tracked file
// key. Relative specifiers resolve against the importing file's
// directory; aliased specifiers against the configured alias targets;
// anything else is treated as an external package.
func (idx *Index) resolveImport(fromPath, source string, aliases []aliasRule) (string, bool) {
	var expanded string

	switch {
	case strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../"):
		expanded = path.Join(path.Dir(fromPath), source)
	default:
		matched := false
		for _, alias := range aliases {
			if strings.HasPrefix(source, alias.prefix) {
				expanded = path.Join(alias.target, strings.TrimPrefix(source, alias.prefix))
				matched = true
				break
			}
		}
		if !matched {
			return "", false
		}
	}

	return idx.lookupModule(expanded)
}

// lookupModule probes the candidate forms of a module path in order:
// the literal path, the path with each tracked extension appended, and
// an index file inside the path as a directory.
func (idx *Index) lookupModule(module string) (string, bool) {
	if _, ok := idx.files[module]; ok {
		return module, true
	}
	for _, ext := range idx.cfg.Index.Extensions {
		if candidate := module + ext; idx.files[candidate] != nil {
			return candidate, true
		}
	}
	for _, ext := range idx.cfg.Index.Extensions {
		if candidate := module + "/index" + ext; idx.files[candidate] != nil {
			return candidate, true
		}
	}
	return "", false
}

// sortedAliases orders alias rules longest prefix first so the most
// specific alias wins, with a lexical tie-break for determinism.
func (idx *Index) sortedAliases() []aliasRule {
	if len(idx.cfg.Index.Aliases) == 0 {
		return nil
	}
	rules := make([]aliasRule, 0, len(idx.cfg.Index.Aliases))
	for prefix, target := range idx.cfg.Index.Aliases {
		rules = append(rules, aliasRule{prefix: prefix, target: target})
	}
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].prefix) != len(rules[j].prefix) {
			return len(rules[i].prefix) > len(rules[j].prefix)
		}
		return rules[i].prefix < rules[j].prefix
	})
	return rules
}

// Graph projects the resolved import graph for metric computation and
// rendering. Nodes and edges come out in file-ID order, so repeated
// calls produce identical output.
func (idx *Index) Graph() (*models.DependencyGraph, error) {
	if err := idx.ensureReady(); err != nil {
		return nil, err
	}

	graph := models.NewDependencyGraph()
	for _, rec := range idx.byID {
		inDegree := 0
		if rev := idx.reverse[rec.id]; rev != nil {
			inDegree = int(rev.GetCardinality())
		}
		graph.AddNode(models.GraphNode{
			ID:       rec.path,
			Name:     path.Base(rec.path),
			Type:     models.NodeFile,
			File:     rec.path,
			InDegree: inDegree,
		})
	}

	for _, rec := range idx.byID {
		fwd := idx.forward[rec.id]
		if fwd == nil {
			continue
		}
		it := fwd.Iterator()
		for it.HasNext() {
			graph.AddEdge(models.GraphEdge{
				From: rec.path,
				To:   idx.byID[it.Next()].path,
				Type: models.EdgeImport,
			})
		}
	}

	return graph, nil
}
