package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/lintmend/internal/service/analysis"
	"github.com/panbanda/lintmend/internal/service/output"
	"github.com/panbanda/lintmend/pkg/models"
)

// Common input structures for tools

// TriageInput is the base input shared by all lintmend tools.
type TriageInput struct {
	Root   string `json:"root,omitempty" jsonschema:"Project root directory. Defaults to the current working directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// ClassifyInput identifies one unused-variable finding to classify.
type ClassifyInput struct {
	TriageInput
	Name       string `json:"name" jsonschema:"Name of the unused variable to classify."`
	File       string `json:"file" jsonschema:"File containing the variable, relative to root."`
	Diagnostic string `json:"diagnostic,omitempty" jsonschema:"Linter diagnostic message, e.g. 'is assigned a value but never used'."`
	UseAI      bool   `json:"use_ai,omitempty" jsonschema:"Consult the configured language model when heuristics are uncertain."`
}

// ImpactInput names the changed file to trace.
type ImpactInput struct {
	TriageInput
	File string `json:"file" jsonschema:"Changed file to trace impact from, relative to root."`
}

// SimilarInput names the identifier to match against the project.
type SimilarInput struct {
	TriageInput
	Name string `json:"name" jsonschema:"Identifier to find similarly-named declarations for."`
}

// HistoryInput names the file whose commit history to summarize.
type HistoryInput struct {
	TriageInput
	File string `json:"file" jsonschema:"File to summarize commit history for, relative to root."`
}

// StatsInput adds index maintenance options.
type StatsInput struct {
	TriageInput
	Rebuild bool `json:"rebuild,omitempty" jsonschema:"Rebuild the index from scratch before reporting."`
}

// GraphInput adds dependency-graph options.
type GraphInput struct {
	TriageInput
	IncludeMetrics bool `json:"include_metrics,omitempty" jsonschema:"Include PageRank hub ranking and import-cycle metrics."`
	Mermaid        bool `json:"mermaid,omitempty" jsonschema:"Return the graph as a Mermaid diagram instead of structured data."`
}

// Helper functions

func getFormat(input TriageInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	svc, err := output.New(output.WithFormat(format))
	if err != nil {
		return "", err
	}
	return svc.FormatData(data)
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func (s *Server) handleClassifyVariable(ctx context.Context, req *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.TriageInput)

	if input.Name == "" {
		return toolError("name is required")
	}
	if input.File == "" {
		return toolError("file is required")
	}

	svc, err := s.serviceFor(input.Root)
	if err != nil {
		return toolError(err.Error())
	}

	result, err := svc.ClassifyVariable(ctx, input.Name, input.File, input.Diagnostic, input.UseAI)
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(result, format)
}

func (s *Server) handleAnalyzeImpact(ctx context.Context, req *mcp.CallToolRequest, input ImpactInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.TriageInput)

	if input.File == "" {
		return toolError("file is required")
	}

	svc, err := s.serviceFor(input.Root)
	if err != nil {
		return toolError(err.Error())
	}

	result, err := svc.AnalyzeImpact(ctx, input.File)
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(result, format)
}

func (s *Server) handleFindSimilar(ctx context.Context, req *mcp.CallToolRequest, input SimilarInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.TriageInput)

	if input.Name == "" {
		return toolError("name is required")
	}

	svc, err := s.serviceFor(input.Root)
	if err != nil {
		return toolError(err.Error())
	}

	matches, err := svc.FindSimilar(ctx, input.Name)
	if err != nil {
		return toolError(err.Error())
	}

	result := struct {
		Name    string                     `json:"name" toon:"name"`
		Matches []models.SimilarIdentifier `json:"matches" toon:"matches"`
	}{input.Name, matches}

	return toolResult(result, format)
}

func (s *Server) handleFileHistory(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.TriageInput)

	if input.File == "" {
		return toolError("file is required")
	}

	svc, err := s.serviceFor(input.Root)
	if err != nil {
		return toolError(err.Error())
	}

	record, err := svc.FileHistory(ctx, input.File)
	if err != nil {
		return toolError(err.Error())
	}
	if record == nil || !record.HasHistory() {
		return toolError("no git history recorded for " + input.File)
	}

	return toolResult(record, format)
}

func (s *Server) handleIndexStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.TriageInput)

	svc, err := s.serviceFor(input.Root)
	if err != nil {
		return toolError(err.Error())
	}

	var stats models.IndexStats
	if input.Rebuild {
		stats, err = svc.Rebuild(ctx)
	} else {
		stats, err = svc.Stats(ctx)
	}
	if err != nil {
		return toolError(err.Error())
	}

	if changed, cerr := svc.ChangedFiles(ctx); cerr == nil {
		stats.ChangedSinceBuild = len(changed)
	}

	return toolResult(stats, format)
}

func (s *Server) handleDependencyGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.TriageInput)

	svc, err := s.serviceFor(input.Root)
	if err != nil {
		return toolError(err.Error())
	}

	graph, metrics, err := svc.AnalyzeGraph(ctx, analysis.GraphOptions{
		IncludeMetrics: input.IncludeMetrics,
	})
	if err != nil {
		return toolError(err.Error())
	}

	if input.Mermaid {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: graph.ToMermaid()},
			},
		}, nil, nil
	}

	if input.IncludeMetrics {
		result := struct {
			Graph   *models.DependencyGraph `json:"graph" toon:"graph"`
			Metrics *models.GraphMetrics    `json:"metrics" toon:"metrics"`
		}{graph, metrics}
		return toolResult(result, format)
	}

	return toolResult(graph, format)
}
