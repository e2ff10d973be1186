// Package linter shells out to the project's JavaScript linter and parses
// its JSON report. ESLint is the default, but anything speaking the same
// report format works through the command and args configuration.
package linter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/panbanda/lintmend/pkg/config"
)

// Message is one finding inside a file report. Field names follow the
// ESLint JSON formatter.
type Message struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"` // 1 warning, 2 error
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Fatal    bool   `json:"fatal,omitempty"`
}

// FileReport is the linter's verdict on one file.
type FileReport struct {
	FilePath     string    `json:"filePath"`
	Messages     []Message `json:"messages"`
	ErrorCount   int       `json:"errorCount"`
	WarningCount int       `json:"warningCount"`
}

// unusedVarRules are the rule IDs whose findings the classifier can
// triage.
var unusedVarRules = map[string]bool{
	"no-unused-vars":                    true,
	"@typescript-eslint/no-unused-vars": true,
}

// IsUnusedVarRule reports whether a rule ID carries unused-variable
// diagnostics.
func IsUnusedVarRule(ruleID string) bool {
	return unusedVarRules[ruleID]
}

// UnusedVariable extracts the variable name from an unused-variable
// message. ESLint quotes the identifier: 'userData' is assigned a value
// but never used.
func (m Message) UnusedVariable() (string, bool) {
	if !IsUnusedVarRule(m.RuleID) {
		return "", false
	}

	start := strings.IndexByte(m.Message, '\'')
	if start < 0 {
		return "", false
	}
	rest := m.Message[start+1:]
	end := strings.IndexByte(rest, '\'')
	if end <= 0 {
		return "", false
	}
	return rest[:end], true
}

// Runner invokes the configured linter rooted at a project directory.
type Runner struct {
	command string
	args    []string
	dir     string
}

// NewRunner builds a runner for the project at root.
func NewRunner(root string, cfg config.LinterConfig) *Runner {
	command := cfg.Command
	if command == "" {
		command = "eslint"
	}
	return &Runner{command: command, args: cfg.Args, dir: root}
}

// Available reports whether the configured linter binary resolves.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.command)
	return err == nil
}

// Lint runs the linter over paths and returns the parsed report.
func (r *Runner) Lint(ctx context.Context, paths ...string) ([]FileReport, error) {
	return r.run(ctx, nil, paths)
}

// Fix runs the linter with --fix, letting it apply its own autofixes,
// and returns the report of what remains.
func (r *Runner) Fix(ctx context.Context, paths ...string) ([]FileReport, error) {
	return r.run(ctx, []string{"--fix"}, paths)
}

func (r *Runner) run(ctx context.Context, extra []string, paths []string) ([]FileReport, error) {
	args := make([]string, 0, len(r.args)+len(extra)+len(paths)+2)
	args = append(args, r.args...)
	args = append(args, extra...)
	args = append(args, "--format", "json")
	args = append(args, paths...)

	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Dir = r.dir

	out, err := cmd.Output()
	if err != nil {
		// ESLint exits 1 when it found problems; the report is still
		// on stdout. Only an unparseable report is a real failure.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(out) > 0 {
			if reports, perr := parseReports(out); perr == nil {
				return reports, nil
			}
		}
		return nil, runError(r.command, err)
	}

	return parseReports(out)
}

func parseReports(out []byte) ([]FileReport, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}

	var reports []FileReport
	if err := json.Unmarshal(out, &reports); err != nil {
		return nil, fmt.Errorf("parse linter report: %w", err)
	}
	return reports, nil
}

func runError(command string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		detail := strings.TrimSpace(string(exitErr.Stderr))
		if detail != "" {
			return fmt.Errorf("%s exited with %d: %s", command, exitErr.ExitCode(), detail)
		}
		return fmt.Errorf("%s exited with %d", command, exitErr.ExitCode())
	}
	return fmt.Errorf("run %s: %w", command, err)
}
