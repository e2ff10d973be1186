package main

import (
	"github.com/spf13/cobra"

	"github.com/panbanda/lintmend/internal/service/analysis"
	"github.com/panbanda/lintmend/pkg/config"
)

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// rootArg returns the project root from an optional positional argument.
func rootArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// getFormat returns the format flag value from the command.
func getFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("format")
	return format
}

// getOutputFile returns the output file path from the command.
func getOutputFile(cmd *cobra.Command) string {
	outputFile, _ := cmd.Flags().GetString("output")
	return outputFile
}

// loadConfig resolves configuration for a project root, honoring the
// --config flag when set.
func loadConfig(root string) (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefaultFrom(root), nil
}

// newAnalysisService builds an analysis service rooted at the project,
// with configuration resolved through loadConfig.
func newAnalysisService(root string, extra ...analysis.Option) (*analysis.Service, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	opts := append([]analysis.Option{
		analysis.WithRoot(root),
		analysis.WithConfig(cfg),
	}, extra...)
	return analysis.New(opts...)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
