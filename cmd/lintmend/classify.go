package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panbanda/lintmend/internal/output"
	"github.com/panbanda/lintmend/internal/service/analysis"
)

var classifyCmd = &cobra.Command{
	Use:     "classify <variable> <file>",
	Aliases: []string{"cls"},
	Short:   "Classify an unused-variable finding",
	Long: `Classifies why a variable reported as unused exists: a genuine
leftover, a typo for a similarly named identifier, residue of a recent
refactor, or an intentional placeholder. The verdict comes with a
confidence score and ranked remediation suggestions.`,
	Args: cobra.ExactArgs(2),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().String("root", ".", "Project root directory")
	classifyCmd.Flags().String("diagnostic", "", "Linter diagnostic message for the finding")
	classifyCmd.Flags().Bool("ai", false, "Consult the AI oracle for ambiguous cases")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	name, file := args[0], args[1]
	root, _ := cmd.Flags().GetString("root")
	diagnostic, _ := cmd.Flags().GetString("diagnostic")
	useAI, _ := cmd.Flags().GetBool("ai")

	svc, err := newAnalysisService(root, analysis.WithAI(useAI))
	if err != nil {
		return err
	}

	result, err := svc.ClassifyVariable(cmd.Context(), name, file, diagnostic, useAI)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(result)
	}

	w := formatter.Writer()

	typeStr := string(result.AnalysisType)
	confStr := fmt.Sprintf("%.0f%%", result.Confidence*100)
	if formatter.Colored() {
		typeStr = output.AnalysisColor(string(result.AnalysisType), typeStr)
		confStr = output.ConfidenceColor(result.Confidence, confStr)
	}

	fmt.Fprintf(w, "%s in %s\n\n", result.VariableName, result.FilePath)
	fmt.Fprintf(w, "Type:       %s\n", typeStr)
	fmt.Fprintf(w, "Confidence: %s", confStr)
	if result.FromOracle {
		fmt.Fprint(w, " (oracle)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Verdict:    %s\n", result.Explanation)

	if len(result.Reasoning) > 0 {
		fmt.Fprintln(w, "\nReasoning:")
		for _, step := range result.Reasoning {
			fmt.Fprintf(w, "  - %s\n", step)
		}
	}

	fmt.Fprintf(w, "\nRecommended: %s", result.RecommendedAction.Action)
	if result.RecommendedAction.Details != "" {
		fmt.Fprintf(w, " (%s)", result.RecommendedAction.Details)
	}
	fmt.Fprintln(w)

	if len(result.PossibleActions) > 0 {
		fmt.Fprintln(w)
		var rows [][]string
		for _, action := range result.PossibleActions {
			rows = append(rows, []string{
				string(action.Action),
				fmt.Sprintf("%.0f%%", action.Confidence*100),
				truncate(action.Description, 60),
			})
		}
		table := output.NewTable(
			"Possible Actions",
			[]string{"Action", "Confidence", "Description"},
			rows,
			nil,
			nil,
		)
		return formatter.Output(table)
	}

	return nil
}
