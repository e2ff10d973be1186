// Package mcpserver exposes lintmend's triage operations as MCP tools
// over stdio so coding agents can classify findings, trace change
// impact, and read fix history without shelling out to the CLI.
package mcpserver

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/lintmend/internal/service/analysis"
)

// Server wraps the MCP server and registers all lintmend triage tools.
type Server struct {
	server *mcp.Server

	// One analysis service per project root so repeated tool calls
	// reuse the built index instead of rescanning.
	mu       sync.Mutex
	services map[string]*analysis.Service
}

// NewServer creates a new MCP server with all lintmend tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "lintmend",
			Version: version,
		},
		nil,
	)

	s := &Server{
		server:   server,
		services: make(map[string]*analysis.Service),
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// serviceFor returns the analysis service for root, constructing and
// caching one on first use.
func (s *Server) serviceFor(root string) (*analysis.Service, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if svc, ok := s.services[abs]; ok {
		return svc, nil
	}
	svc, err := analysis.New(analysis.WithRoot(abs))
	if err != nil {
		return nil, err
	}
	s.services[abs] = svc
	return svc, nil
}

// registerTools adds all lintmend triage tools to the server.
func (s *Server) registerTools() {
	// Unused-variable classification
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_variable",
		Description: describeClassify(),
	}, s.handleClassifyVariable)

	// Change impact propagation
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_impact",
		Description: describeImpact(),
	}, s.handleAnalyzeImpact)

	// Similar identifier lookup
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_similar",
		Description: describeSimilar(),
	}, s.handleFindSimilar)

	// Commit-history signals
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "file_history",
		Description: describeHistory(),
	}, s.handleFileHistory)

	// Index statistics
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_stats",
		Description: describeStats(),
	}, s.handleIndexStats)

	// Import graph with hub/cycle metrics
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dependency_graph",
		Description: describeGraph(),
	}, s.handleDependencyGraph)
}
