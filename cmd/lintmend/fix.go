package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/lintmend/internal/linter"
	"github.com/panbanda/lintmend/internal/output"
	"github.com/panbanda/lintmend/internal/progress"
	"github.com/panbanda/lintmend/internal/service/analysis"
	"github.com/panbanda/lintmend/internal/service/scanner"
	"github.com/panbanda/lintmend/pkg/models"
)

var fixCmd = &cobra.Command{
	Use:   "fix [path...]",
	Short: "Run the linter autofix pass and triage what remains",
	Long: `Runs the configured linter with --fix, then classifies every
unused-variable finding the autofix could not resolve. Each verdict is
recorded in the audit trail, and files with remaining findings get an
impact report so removals can be ordered safely.`,
	RunE: runFix,
}

func init() {
	fixCmd.Flags().String("root", ".", "Project root directory")
	fixCmd.Flags().Bool("dry-run", false, "Diagnose without applying linter autofixes")
	fixCmd.Flags().Bool("ai", false, "Consult the AI oracle for ambiguous findings")
	fixCmd.Flags().Bool("impact", true, "Include an impact report for files with findings")

	rootCmd.AddCommand(fixCmd)
}

// fixFinding pairs a classified verdict with its location in the
// linter report.
type fixFinding struct {
	Line   int                          `json:"line" toon:"line"`
	Column int                          `json:"column" toon:"column"`
	RuleID string                       `json:"rule_id" toon:"rule_id"`
	Result *models.ClassificationResult `json:"result" toon:"result"`
}

// fixReport is the machine-format shape of a triage run.
type fixReport struct {
	LintedFiles int                      `json:"linted_files" toon:"linted_files"`
	Findings    []fixFinding             `json:"findings" toon:"findings"`
	Impact      []*models.ImpactAnalysis `json:"impact,omitempty" toon:"impact,omitempty"`
}

func runFix(cmd *cobra.Command, args []string) error {
	paths := getPaths(args)
	root, _ := cmd.Flags().GetString("root")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	useAI, _ := cmd.Flags().GetBool("ai")
	withImpact, _ := cmd.Flags().GetBool("impact")

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	runner := linter.NewRunner(root, cfg.Linter)
	if !runner.Available() {
		command := cfg.Linter.Command
		if command == "" {
			command = "eslint"
		}
		return fmt.Errorf("linter %q not found in PATH (set [linter] command in the config)", command)
	}

	// Positional paths are relative to the project root, like the index.
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			paths[i] = filepath.Join(root, p)
		}
	}

	scanSvc := scanner.New(scanner.WithConfig(cfg))
	scan, err := scanSvc.ScanPaths(paths)
	if err != nil {
		return err
	}
	if len(scan.Files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	label := "Running linter autofix..."
	if dryRun {
		label = "Running linter..."
	}
	spinner := progress.NewSpinner(label)

	var reports []linter.FileReport
	if dryRun {
		reports, err = runner.Lint(cmd.Context(), scan.Files...)
	} else {
		reports, err = runner.Fix(cmd.Context(), scan.Files...)
	}
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid root %s: %w", root, err)
	}

	type pending struct {
		file     string
		variable string
		rule     string
		message  string
		line     int
		column   int
	}
	var found []pending
	for _, report := range reports {
		file := report.FilePath
		if rel, rerr := filepath.Rel(absRoot, file); rerr == nil {
			file = filepath.ToSlash(rel)
		}
		for _, msg := range report.Messages {
			name, ok := msg.UnusedVariable()
			if !ok {
				continue
			}
			found = append(found, pending{
				file:     file,
				variable: name,
				rule:     msg.RuleID,
				message:  msg.Message,
				line:     msg.Line,
				column:   msg.Column,
			})
		}
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	report := fixReport{LintedFiles: len(reports)}

	if len(found) == 0 {
		if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
			return formatter.Output(report)
		}
		color.Green("No unused-variable findings across %d linted files", len(reports))
		return nil
	}

	svc, err := analysis.New(
		analysis.WithRoot(root),
		analysis.WithConfig(cfg),
		analysis.WithAI(useAI),
	)
	if err != nil {
		return err
	}

	tracker := progress.NewTracker("Classifying findings...", len(found))
	var affectedFiles []string
	seen := make(map[string]bool)
	for _, f := range found {
		result, cerr := svc.ClassifyVariable(cmd.Context(), f.variable, f.file, f.message, useAI)
		if cerr != nil {
			tracker.FinishError(cerr)
			return fmt.Errorf("classification failed for %s in %s: %w", f.variable, f.file, cerr)
		}

		rec := models.FixRecord{
			FilePath: f.file,
			RuleID:   f.rule,
			Variable: f.variable,
			Action:   result.RecommendedAction.Action,
			Details:  result.Explanation,
		}
		if aerr := svc.RecordFix(cmd.Context(), rec); aerr != nil {
			tracker.FinishError(aerr)
			return fmt.Errorf("recording fix for %s: %w", f.variable, aerr)
		}

		report.Findings = append(report.Findings, fixFinding{
			Line:   f.line,
			Column: f.column,
			RuleID: f.rule,
			Result: result,
		})
		if !seen[f.file] {
			seen[f.file] = true
			affectedFiles = append(affectedFiles, f.file)
		}
		tracker.Tick()
	}
	tracker.FinishSuccess()

	if withImpact {
		for _, file := range affectedFiles {
			impact, ierr := svc.AnalyzeImpact(cmd.Context(), file)
			if ierr != nil {
				return fmt.Errorf("impact analysis failed for %s: %w", file, ierr)
			}
			report.Impact = append(report.Impact, impact)
		}
	}

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(report)
	}

	var rows [][]string
	counts := make(map[models.AnalysisType]int)
	for _, f := range report.Findings {
		result := f.Result
		counts[result.AnalysisType]++

		typeStr := string(result.AnalysisType)
		confStr := fmt.Sprintf("%.0f%%", result.Confidence*100)
		if formatter.Colored() {
			typeStr = output.AnalysisColor(string(result.AnalysisType), typeStr)
			confStr = output.ConfidenceColor(result.Confidence, confStr)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", result.FilePath, f.Line),
			result.VariableName,
			typeStr,
			confStr,
			string(result.RecommendedAction.Action),
		})
	}

	table := output.NewTable(
		"Remaining Findings",
		[]string{"Location", "Variable", "Type", "Confidence", "Action"},
		rows,
		nil,
		nil,
	)
	if err := formatter.Output(table); err != nil {
		return err
	}

	if len(report.Impact) > 0 {
		var impactRows [][]string
		for _, impact := range report.Impact {
			scoreStr := fmt.Sprintf("%.2f", impact.Summary.MaxScore)
			if impact.Summary.MaxScore >= 0.7 {
				scoreStr = color.RedString(scoreStr)
			} else if impact.Summary.MaxScore >= 0.4 {
				scoreStr = color.YellowString(scoreStr)
			}
			impactRows = append(impactRows, []string{
				impact.SourceFile,
				fmt.Sprintf("%d", impact.Summary.TotalAffected),
				scoreStr,
			})
		}

		impactTable := output.NewTable(
			"Change Impact",
			[]string{"File", "Affected Files", "Max Score"},
			impactRows,
			nil,
			nil,
		)
		if err := formatter.Output(impactTable); err != nil {
			return err
		}
	}

	fmt.Printf("\nSummary: %d findings in %d files: %d genuine unused, %d typos, %d refactor leftovers, %d intentional\n",
		len(report.Findings),
		len(affectedFiles),
		counts[models.AnalysisGenuineUnused],
		counts[models.AnalysisTypo],
		counts[models.AnalysisRefactorLeftover],
		counts[models.AnalysisIntentionalUnused])

	return nil
}
