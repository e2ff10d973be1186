package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/lintmend/internal/output"
	"github.com/panbanda/lintmend/internal/progress"
	"github.com/panbanda/lintmend/internal/service/analysis"
	"github.com/panbanda/lintmend/pkg/models"
)

var indexCmd = &cobra.Command{
	Use:     "index [path]",
	Aliases: []string{"idx"},
	Short:   "Build the project index and report its statistics",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runIndex,
}

func init() {
	indexCmd.Flags().Bool("metrics", false, "Include dependency graph metrics (PageRank, cycles)")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := rootArg(args)
	includeMetrics, _ := cmd.Flags().GetBool("metrics")

	spinner := progress.NewSpinner("Building project index...")
	svc, err := newAnalysisService(root, analysis.WithProgress(spinner))
	if err != nil {
		return err
	}

	stats, err := svc.BuildIndex(cmd.Context())
	spinner.FinishSuccess()
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	var metrics *models.GraphMetrics
	if includeMetrics {
		_, metrics, err = svc.AnalyzeGraph(cmd.Context(), analysis.GraphOptions{IncludeMetrics: true})
		if err != nil {
			return fmt.Errorf("graph metrics failed: %w", err)
		}
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		if includeMetrics {
			return formatter.Output(struct {
				Stats   models.IndexStats    `json:"stats" toon:"stats"`
				Metrics *models.GraphMetrics `json:"metrics" toon:"metrics"`
			}{stats, metrics})
		}
		return formatter.Output(stats)
	}

	rows := [][]string{
		{"Files", fmt.Sprintf("%d", stats.TotalFiles)},
		{"Identifiers", fmt.Sprintf("%d", stats.TotalIdentifiers)},
		{"Imports", fmt.Sprintf("%d", stats.TotalImports)},
		{"Exports", fmt.Sprintf("%d", stats.TotalExports)},
		{"Graph edges", fmt.Sprintf("%d", stats.GraphEdges)},
		{"Files with history", fmt.Sprintf("%d", stats.FilesWithHistory)},
		{"Skipped files", fmt.Sprintf("%d", stats.SkippedFiles)},
	}

	langs := make([]string, 0, len(stats.FilesByLanguage))
	for lang := range stats.FilesByLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		rows = append(rows, []string{lang + " files", fmt.Sprintf("%d", stats.FilesByLanguage[lang])})
	}

	table := output.NewTable(
		"Project Index",
		[]string{"Metric", "Value"},
		rows,
		nil,
		stats,
	)
	if err := formatter.Output(table); err != nil {
		return err
	}

	if includeMetrics && metrics != nil {
		w := formatter.Writer()
		if formatter.Colored() {
			color.Cyan("Graph Metrics:")
		} else {
			fmt.Fprintln(w, "Graph Metrics:")
		}
		fmt.Fprintf(w, "  Nodes: %d\n", metrics.Summary.TotalNodes)
		fmt.Fprintf(w, "  Edges: %d\n", metrics.Summary.TotalEdges)
		fmt.Fprintf(w, "  Avg Degree: %.2f\n", metrics.Summary.AvgDegree)
		fmt.Fprintf(w, "  Density: %.4f\n", metrics.Summary.Density)
		fmt.Fprintf(w, "  Import Cycles: %d\n", metrics.Summary.CycleCount)

		if len(metrics.NodeMetrics) > 0 {
			fmt.Fprintln(w)
			if formatter.Colored() {
				color.Cyan("Top Files by PageRank:")
			} else {
				fmt.Fprintln(w, "Top Files by PageRank:")
			}
			ranked := make([]models.NodeMetric, len(metrics.NodeMetrics))
			copy(ranked, metrics.NodeMetrics)
			sort.Slice(ranked, func(i, j int) bool {
				return ranked[i].PageRank > ranked[j].PageRank
			})
			for i, nm := range ranked {
				if i >= 5 {
					break
				}
				fmt.Fprintf(w, "  %s: %.4f (in: %d, out: %d)\n",
					nm.FilePath, nm.PageRank, nm.InDegree, nm.OutDegree)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Printf("\nIndexed %d files in %dms", stats.TotalFiles, stats.BuildDurationMS)
	if stats.UsedParallelScan {
		fmt.Printf(" (%d workers)", stats.ParallelWorkers)
	}
	fmt.Println()

	return nil
}
