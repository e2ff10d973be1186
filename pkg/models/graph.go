package models

// GraphNode is one file in the import graph.
type GraphNode struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     NodeType `json:"type"`
	File     string   `json:"file"`
	InDegree int      `json:"in_degree"`
}

// NodeType distinguishes project files from unresolved externals.
type NodeType string

const (
	NodeFile   NodeType = "file"
	NodeModule NodeType = "module"
)

// GraphEdge is one resolved import between files.
type GraphEdge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Type EdgeType `json:"type"`
}

// EdgeType tags how two files are linked.
type EdgeType string

const (
	EdgeImport    EdgeType = "import"
	EdgeReference EdgeType = "reference"
)

// DependencyGraph is the import graph projected out of the index for
// metric computation and rendering.
type DependencyGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes: make([]GraphNode, 0),
		Edges: make([]GraphEdge, 0),
	}
}

// AddNode adds a node to the graph.
func (g *DependencyGraph) AddNode(node GraphNode) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge adds an edge to the graph.
func (g *DependencyGraph) AddEdge(edge GraphEdge) {
	g.Edges = append(g.Edges, edge)
}

// GraphMetrics carries centrality and cycle results for the import
// graph.
type GraphMetrics struct {
	NodeMetrics []NodeMetric  `json:"node_metrics"`
	Cycles      []ImportCycle `json:"cycles,omitempty"`
	Summary     GraphSummary  `json:"summary"`
}

// NodeMetric is the computed importance of a single file.
type NodeMetric struct {
	FilePath  string  `json:"file_path"`
	PageRank  float64 `json:"pagerank"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
}

// ImportCycle is one strongly connected component with more than one
// member: a set of files that transitively import each other.
type ImportCycle struct {
	Members []string `json:"members"`
}

// GraphSummary provides aggregate graph statistics.
type GraphSummary struct {
	TotalNodes int     `json:"total_nodes"`
	TotalEdges int     `json:"total_edges"`
	AvgDegree  float64 `json:"avg_degree"`
	Density    float64 `json:"density"`
	CycleCount int     `json:"cycle_count"`
}

// ToMermaid renders the graph as Mermaid diagram syntax for markdown
// output.
func (g *DependencyGraph) ToMermaid() string {
	result := "graph TD\n"

	for _, node := range g.Nodes {
		label := node.Name
		if label == "" {
			label = node.ID
		}
		result += "    " + sanitizeMermaidID(node.ID) + "[\"" + label + "\"]\n"
	}

	for _, edge := range g.Edges {
		arrow := "-->"
		if edge.Type == EdgeReference {
			arrow = "-.->|shares|"
		}
		result += "    " + sanitizeMermaidID(edge.From) + " " + arrow + " " + sanitizeMermaidID(edge.To) + "\n"
	}

	return result
}

// sanitizeMermaidID makes an ID safe for Mermaid.
func sanitizeMermaidID(id string) string {
	result := ""
	for _, c := range id {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			result += string(c)
		} else {
			result += "_"
		}
	}
	return result
}
