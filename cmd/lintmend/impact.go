package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/lintmend/internal/output"
)

var impactCmd = &cobra.Command{
	Use:     "impact <file>",
	Aliases: []string{"imp"},
	Short:   "Trace which files a change would ripple into",
	Long: `Walks the reverse dependency graph from the given file, scoring each
affected file by proximity and shared identifiers. Use before removing
exports or renaming identifiers to see what else needs attention.`,
	Args: cobra.ExactArgs(1),
	RunE: runImpact,
}

func init() {
	impactCmd.Flags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) error {
	file := args[0]
	root, _ := cmd.Flags().GetString("root")

	svc, err := newAnalysisService(root)
	if err != nil {
		return err
	}

	analysis, err := svc.AnalyzeImpact(cmd.Context(), file)
	if err != nil {
		return fmt.Errorf("impact analysis failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(analysis)
	}

	if len(analysis.Affected) == 0 {
		color.Green("No files depend on %s", analysis.SourceFile)
		return nil
	}

	var rows [][]string
	for _, rec := range analysis.Affected {
		scoreStr := fmt.Sprintf("%.2f", rec.ImpactScore)
		if rec.ImpactScore >= 0.7 {
			scoreStr = color.RedString(scoreStr)
		} else if rec.ImpactScore >= 0.4 {
			scoreStr = color.YellowString(scoreStr)
		}

		shared := ""
		if len(rec.SharedVariables) > 0 {
			shared = truncate(strings.Join(rec.SharedVariables, ", "), 40)
		}

		rows = append(rows, []string{
			rec.FilePath,
			scoreStr,
			fmt.Sprintf("%d", rec.DirectDependencyCount),
			shared,
			truncate(strings.Join(rec.ImpactPath, " -> "), 50),
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Impact of Changing %s", analysis.SourceFile),
		[]string{"File", "Score", "Direct Deps", "Shared Identifiers", "Path"},
		rows,
		[]string{
			fmt.Sprintf("Affected: %d", analysis.Summary.TotalAffected),
			fmt.Sprintf("Max Score: %.2f", analysis.Summary.MaxScore),
			"",
			fmt.Sprintf("Shared: %d", analysis.Summary.SharedVariables),
			"",
		},
		analysis,
	)

	return formatter.Output(table)
}
