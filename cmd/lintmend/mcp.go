package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panbanda/lintmend/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP (Model Context Protocol) server for LLM tool integration",
	Long: `Starts an MCP server over stdio transport that exposes lintmend's
triage operations as tools that LLMs can invoke. This lets AI assistants
classify unused variables, trace change impact, and read git history
signals directly from the project index.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "lintmend": {
        "command": "lintmend",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - classify_variable   Classify an unused-variable finding
  - analyze_impact      Trace change impact through the import graph
  - find_similar        Find typo candidates for an identifier
  - file_history        Git history signals for a file
  - index_stats         Project index statistics
  - dependency_graph    Import graph with optional PageRank metrics`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().Bool("manifest", false, "Print the server manifest JSON and exit")

	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	if manifest, _ := cmd.Flags().GetBool("manifest"); manifest {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	server := mcpserver.NewServer(version)
	return server.Run(cmd.Context())
}
