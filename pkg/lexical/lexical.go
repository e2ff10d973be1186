// Package lexical extracts identifier declarations, usages, imports, and
// exports from TypeScript/JavaScript source text using line-oriented
// pattern matching. This is deliberately not a parser: it over-counts
// usages (property names, tokens inside strings) and misses scope, but
// it needs no AST and degrades gracefully on any input.
package lexical

import (
	"regexp"
	"strings"
)

// Kind tags what an identifier occurrence is.
type Kind string

const (
	KindVariable     Kind = "variable"
	KindFunction     Kind = "function"
	KindClass        Kind = "class"
	KindMethod       Kind = "method"
	KindJSXComponent Kind = "jsx-component"
	KindUsage        Kind = "usage"
)

func (k Kind) String() string { return string(k) }

// Occurrence is one textual identifier match within a file. Matches are
// not deduplicated across lines; a declaration and a usage for the same
// name on the same line are mutually exclusive.
type Occurrence struct {
	Name          string `json:"name"`
	Line          uint32 `json:"line"`
	Kind          Kind   `json:"kind"`
	IsDeclaration bool   `json:"is_declaration"`
}

// ImportEdge is one import statement: the module specifier plus the
// names bound from it. Aliased named imports are recorded under the
// original exported name, not the alias.
type ImportEdge struct {
	Source    string   `json:"source"`
	Default   string   `json:"default,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Named     []string `json:"named,omitempty"`
}

// ExportEntry is one exported binding.
type ExportEntry struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// Extraction is the full lexical result for one file's text.
type Extraction struct {
	Identifiers []Occurrence  `json:"identifiers"`
	Imports     []ImportEdge  `json:"imports"`
	Exports     []ExportEntry `json:"exports"`
}

// Declaration patterns, evaluated independently per line. A single line
// may contribute multiple declarations.
var (
	varDeclPattern    = regexp.MustCompile(`\b(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	funcDeclPattern   = regexp.MustCompile(`\bfunction\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	classDeclPattern  = regexp.MustCompile(`\bclass\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	methodDeclPattern = regexp.MustCompile(`\b([A-Za-z_$][A-Za-z0-9_$]*)\s*\([^)]*\)\s*\{`)
	jsxTagPattern     = regexp.MustCompile(`<([A-Z][A-Za-z0-9_$]*)`)

	identifierToken = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

	// One pattern covers every import shape: named list, namespace,
	// default, a second named clause, a second default, and the source.
	importPattern = regexp.MustCompile(`import\s+(?:\{([^}]*)\}|\*\s+as\s+([A-Za-z_$][A-Za-z0-9_$]*)|([A-Za-z_$][A-Za-z0-9_$]*))\s*(?:,\s*(?:\{([^}]*)\}|([A-Za-z_$][A-Za-z0-9_$]*)))?\s*from\s*['"]([^'"]+)['"]`)

	exportPattern = regexp.MustCompile(`export\s+(default\s+)?(?:class|function|const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
)

type declPattern struct {
	re   *regexp.Regexp
	kind Kind
}

// Pattern order fixes occurrence order within a line: declarations land
// before usages, and declaration kinds land in this order.
var declPatterns = []declPattern{
	{varDeclPattern, KindVariable},
	{funcDeclPattern, KindFunction},
	{classDeclPattern, KindClass},
	{methodDeclPattern, KindMethod},
	{jsxTagPattern, KindJSXComponent},
}

// Extract runs the lexical pass over file text. Pure function, no I/O.
func Extract(text string) Extraction {
	var ex Extraction

	for i, line := range strings.Split(text, "\n") {
		lineNo := uint32(i + 1)
		declaredOnLine := make(map[string]bool)

		for _, p := range declPatterns {
			for _, m := range p.re.FindAllStringSubmatch(line, -1) {
				name := m[1]
				if p.kind == KindMethod && reservedWords[name] {
					continue
				}
				ex.Identifiers = append(ex.Identifiers, Occurrence{
					Name:          name,
					Line:          lineNo,
					Kind:          p.kind,
					IsDeclaration: true,
				})
				declaredOnLine[name] = true
			}
		}

		for _, tok := range identifierToken.FindAllString(line, -1) {
			if len(tok) <= 1 || reservedWords[tok] || declaredOnLine[tok] {
				continue
			}
			ex.Identifiers = append(ex.Identifiers, Occurrence{
				Name: tok,
				Line: lineNo,
				Kind: KindUsage,
			})
		}

		if m := importPattern.FindStringSubmatch(line); m != nil {
			ex.Imports = append(ex.Imports, buildImportEdge(m))
		}

		if m := exportPattern.FindStringSubmatch(line); m != nil {
			ex.Exports = append(ex.Exports, ExportEntry{
				Name:      m[2],
				IsDefault: m[1] != "",
			})
		}
	}

	return ex
}

// buildImportEdge assembles an edge from the import pattern's capture
// groups: 1 named list, 2 namespace, 3 default, 4 second named list,
// 5 second default, 6 source.
func buildImportEdge(m []string) ImportEdge {
	edge := ImportEdge{Source: m[6]}

	if m[2] != "" {
		edge.Namespace = m[2]
	}
	if m[3] != "" {
		edge.Default = m[3]
	}
	if m[5] != "" && edge.Default == "" {
		edge.Default = m[5]
	}

	for _, list := range []string{m[1], m[4]} {
		if list == "" {
			continue
		}
		for _, part := range strings.Split(list, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			// "exported as alias" binds under the exported name.
			if idx := strings.Index(name, " as "); idx > 0 {
				name = strings.TrimSpace(name[:idx])
			}
			edge.Named = append(edge.Named, name)
		}
	}

	return edge
}
