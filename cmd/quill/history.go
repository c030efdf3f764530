package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillctl/quill/internal/history"
	"github.com/quillctl/quill/internal/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent health runs and the trend",
	Long: `List the most recent health runs recorded by quill check, newest
first, with a trend line comparing the window's oldest and newest runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := context.Background()

		store, err := history.Open(filepath.Join(rootDir, filepath.FromSlash(history.DefaultPath)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		runs, err := store.Recent(ctx, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet. Run `quill check` first.")
			return
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("  %-20s %-6s %6s %6s %6s %8s\n",
			"STARTED", "STATUS", "FILES", "FAIL", "WARN", "TOKENS")
		for _, run := range runs {
			// Pad before coloring so escape codes don't skew columns.
			status := fmt.Sprintf("%-6s", run.Status)
			switch run.Status {
			case types.StatusPass:
				status = green(status)
			case types.StatusWarn:
				status = yellow(status)
			case types.StatusFail:
				status = red(status)
			}
			fmt.Printf("  %-20s %s %6d %6d %6d %8d\n",
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				status, run.FilesChecked, run.FailCount, run.WarnCount, run.EstimatedTokens)
		}

		trend, err := store.TrendOver(ctx, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if trend.Runs < 2 {
			return
		}

		fmt.Printf("\n%s\n", strings.Repeat("─", 60))
		fmt.Printf("Trend over last %d run(s): failures %s, warnings %s, tokens %s\n",
			trend.Runs, delta(trend.FailDelta), delta(trend.WarnDelta), delta(trend.TokenDelta))
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 10, "How many runs to show")

	rootCmd.AddCommand(historyCmd)
}

// delta renders a signed count, green when shrinking, red when
// growing. Fewer findings and fewer tokens both read as improvement.
func delta(n int) string {
	switch {
	case n < 0:
		return color.New(color.FgGreen).Sprintf("%d", n)
	case n > 0:
		return color.New(color.FgRed).Sprintf("+%d", n)
	}
	return "±0"
}
