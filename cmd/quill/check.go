package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillctl/quill/internal/health"
	"github.com/quillctl/quill/internal/history"
	"github.com/quillctl/quill/internal/types"
	"github.com/quillctl/quill/internal/urlcheck"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate documents and report corpus health",
	Long: `Run every validator over the document corpus and print a health report.

The report covers per-document structure (required header fields,
research sources, source shape, related links, content length),
cross-document consistency (area overviews vs. topics, index files vs.
directory contents), and the estimated token budget.

Exit codes:
  0 - All documents healthy (or no documents found)
  1 - Warnings only
  2 - One or more failures

Examples:
  # Check the current project
  quill check

  # Machine-readable output
  quill check --json

  # Also probe cited source URLs
  quill check --urls

  # Skip recording this run in history
  quill check --no-history`,
	Run: func(cmd *cobra.Command, args []string) {
		asJSON, _ := cmd.Flags().GetBool("json")
		checkURLs, _ := cmd.Flags().GetBool("urls")
		noHistory, _ := cmd.Flags().GetBool("no-history")
		verbose, _ := cmd.Flags().GetBool("verbose")

		ctx := context.Background()

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		opts := health.Options{
			Conventions: cfg.Conventions(),
			WordLimit:   cfg.WordLimit,
			TokenBudget: cfg.TokenBudget,
			Roots:       cfg.Roots(),
		}
		if checkURLs || cfg.URLCheck.Enabled {
			timeout, err := cfg.URLCheck.ParseTimeout()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			opts.URLChecker = urlcheck.New(timeout, cfg.URLCheck.Concurrency, cfg.URLCheck.RPS)
		}

		report, err := health.NewRunner(opts).Run(ctx, rootDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if !noHistory {
			recordHistory(ctx, report)
		}

		if asJSON {
			if err := health.RenderJSON(os.Stdout, report); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		} else {
			health.RenderText(os.Stdout, report, verbose)
		}

		os.Exit(health.ExitCode(report.Status))
	},
}

func init() {
	checkCmd.Flags().Bool("json", false, "Emit the report as JSON")
	checkCmd.Flags().Bool("urls", false, "Also probe cited source URLs")
	checkCmd.Flags().Bool("no-history", false, "Do not record this run in history")
	checkCmd.Flags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(checkCmd)
}

// recordHistory stores the run summary. History problems must never
// fail a check, so they only warn on stderr.
func recordHistory(ctx context.Context, report *types.HealthReport) {
	store, err := history.Open(filepath.Join(rootDir, filepath.FromSlash(history.DefaultPath)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
	}
}
