package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/lintmend/internal/output"
	"github.com/panbanda/lintmend/pkg/models"
)

var similarCmd = &cobra.Command{
	Use:     "similar <name>",
	Aliases: []string{"sim"},
	Short:   "Find identifiers similar to a name (typo candidates)",
	Args:    cobra.ExactArgs(1),
	RunE:    runSimilar,
}

func init() {
	similarCmd.Flags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	name := args[0]
	root, _ := cmd.Flags().GetString("root")

	svc, err := newAnalysisService(root)
	if err != nil {
		return err
	}

	matches, err := svc.FindSimilar(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("similarity search failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(struct {
			Name    string                     `json:"name" toon:"name"`
			Matches []models.SimilarIdentifier `json:"matches" toon:"matches"`
		}{name, matches})
	}

	if len(matches) == 0 {
		color.Yellow("No identifiers similar to %q", name)
		return nil
	}

	var rows [][]string
	for _, m := range matches {
		scoreStr := fmt.Sprintf("%.2f", m.Score)
		if m.Score >= 0.9 {
			scoreStr = color.RedString(scoreStr)
		} else if m.Score >= 0.8 {
			scoreStr = color.YellowString(scoreStr)
		}

		rows = append(rows, []string{
			m.Name,
			scoreStr,
			fmt.Sprintf("%d", m.ReferenceCount),
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Identifiers Similar to %q", name),
		[]string{"Name", "Similarity", "References"},
		rows,
		nil,
		matches,
	)

	return formatter.Output(table)
}
