package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/lintmend/internal/output"
)

var historyCmd = &cobra.Command{
	Use:     "history <file>",
	Aliases: []string{"hist"},
	Short:   "Show git history signals for a file",
	Long: `Shows the recent commits touching a file together with the derived
signals the classifier uses: refactor probability (how refactor-flavored
and recent the commit messages are) and change frequency.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	file := args[0]
	root, _ := cmd.Flags().GetString("root")

	svc, err := newAnalysisService(root)
	if err != nil {
		return err
	}

	record, err := svc.FileHistory(cmd.Context(), file)
	if err != nil {
		return fmt.Errorf("history lookup failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if record == nil || !record.HasHistory() {
		if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
			return formatter.Output(record)
		}
		color.Yellow("No git history recorded for %s", file)
		return nil
	}

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(record)
	}

	w := formatter.Writer()

	probStr := fmt.Sprintf("%.2f", record.RefactorProbability)
	if record.RefactorProbability > 0.6 {
		probStr = color.RedString(probStr)
	} else if record.RefactorProbability > 0.4 {
		probStr = color.YellowString(probStr)
	}

	fmt.Fprintf(w, "Refactor Probability: %s\n", probStr)
	fmt.Fprintf(w, "Change Frequency:     %.2f\n\n", record.ChangeFrequency)

	var rows [][]string
	for _, c := range record.Commits {
		hash := c.Hash
		if len(hash) > 8 {
			hash = hash[:8]
		}
		rows = append(rows, []string{
			hash,
			time.Unix(c.Timestamp, 0).Format("2006-01-02"),
			c.Author,
			truncate(c.Message, 50),
		})
	}

	table := output.NewTable(
		fmt.Sprintf("Recent Commits for %s", file),
		[]string{"Hash", "Date", "Author", "Message"},
		rows,
		nil,
		record,
	)
	if err := formatter.Output(table); err != nil {
		return err
	}

	if len(record.AuthorLineCounts) > 0 {
		authors := make([]string, 0, len(record.AuthorLineCounts))
		for a := range record.AuthorLineCounts {
			authors = append(authors, a)
		}
		sort.Slice(authors, func(i, j int) bool {
			if record.AuthorLineCounts[authors[i]] != record.AuthorLineCounts[authors[j]] {
				return record.AuthorLineCounts[authors[i]] > record.AuthorLineCounts[authors[j]]
			}
			return authors[i] < authors[j]
		})

		var authorRows [][]string
		for _, a := range authors {
			authorRows = append(authorRows, []string{a, fmt.Sprintf("%d", record.AuthorLineCounts[a])})
		}

		authorTable := output.NewTable(
			"Line Ownership",
			[]string{"Author", "Lines"},
			authorRows,
			nil,
			nil,
		)
		return formatter.Output(authorTable)
	}

	return nil
}
