package health

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/quillctl/quill/internal/types"
)

// ExitCode maps a report status to a process exit code: 0 for pass (or
// nothing to check), 1 when the worst finding is a warning, 2 when
// anything failed.
func ExitCode(status types.Status) int {
	switch status {
	case types.StatusFail:
		return 2
	case types.StatusWarn:
		return 1
	}
	return 0
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, report *types.HealthReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// RenderText writes a human-readable report: issues grouped per file
// under a → header, a separator, then the verdict and token budget.
// Verbose adds suggestions, the per-area budget breakdown, and run
// metadata.
func RenderText(w io.Writer, report *types.HealthReport, verbose bool) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	if report.Status == types.StatusNone {
		fmt.Fprintf(w, "%s No documents found\n", yellow("⚠"))
		return
	}

	// Issues arrive sorted by severity, so collecting files in first-
	// appearance order lists the worst files first.
	var order []string
	byFile := make(map[string][]types.Issue)
	for _, issue := range report.Issues {
		if _, ok := byFile[issue.File]; !ok {
			order = append(order, issue.File)
		}
		byFile[issue.File] = append(byFile[issue.File], issue)
	}

	for _, file := range order {
		fmt.Fprintf(w, "%s %s\n", cyan("→"), file)
		for _, issue := range byFile[file] {
			glyph := cyan("ⓘ")
			switch issue.Severity {
			case types.SeverityFail:
				glyph = red("✗")
			case types.SeverityWarn:
				glyph = yellow("⚠")
			}
			if issue.Section != "" {
				fmt.Fprintf(w, "  %s %s [%s]\n", glyph, issue.Message, issue.Section)
			} else {
				fmt.Fprintf(w, "  %s %s\n", glyph, issue.Message)
			}
			if verbose && issue.Suggestion != "" {
				for _, line := range strings.Split(issue.Suggestion, "\n") {
					fmt.Fprintf(w, "    %s\n", line)
				}
			}
		}
	}
	if len(report.Issues) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 60))

	fails, warns, _ := report.CountBySeverity()
	switch report.Status {
	case types.StatusPass:
		fmt.Fprintf(w, "%s All %d document(s) healthy\n", green("✓"), report.FilesChecked)
	case types.StatusWarn:
		fmt.Fprintf(w, "%s %d warning(s) across %d document(s)\n", yellow("⚠"), warns, report.FilesChecked)
	case types.StatusFail:
		fmt.Fprintf(w, "%s %d failure(s), %d warning(s) across %d document(s)\n",
			red("✗"), fails, warns, report.FilesChecked)
	}

	b := report.TokenBudget
	if b.OverBudget {
		fmt.Fprintf(w, "%s Estimated %d tokens, over the %d-token budget\n",
			yellow("⚠"), b.TotalEstimatedTokens, b.WarningThreshold)
	} else {
		fmt.Fprintf(w, "  Estimated %d of %d budgeted tokens\n",
			b.TotalEstimatedTokens, b.WarningThreshold)
	}

	if verbose {
		for _, area := range b.Areas {
			fmt.Fprintf(w, "  • %s: %d tokens (%d file(s))\n", area.Area, area.EstimatedTokens, area.Files)
		}
		fmt.Fprintf(w, "  Run %s finished in %dms\n", report.RunID, report.DurationMS)
	}
}
