package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillctl/quill/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply mechanical repairs to the corpus",
	Long: `Apply every safe automatic repair: insert missing related: keys and
regenerate stale or missing index files.

Only mechanical fixes run. Anything needing judgment — structured
source entries, missing descriptions, prose — is left to a human.

Examples:
  quill fix
  quill fix --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		applier := fix.NewApplier(fix.Options{
			Conventions: cfg.Conventions(),
			Roots:       cfg.Roots(),
			DryRun:      dryRun,
		})
		result, err := applier.Apply(context.Background(), rootDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		if len(result.Changes) == 0 && len(result.IndexesWritten) == 0 {
			fmt.Printf("%s Nothing to fix\n", green("✓"))
			return
		}

		for _, change := range result.Changes {
			fmt.Printf("  %s %s (%s)\n", green("✓"), change.File, change.Fixer)
		}
		for _, p := range result.IndexesWritten {
			fmt.Printf("  %s %s (index)\n", green("✓"), p)
		}

		fmt.Printf("\n%s\n", strings.Repeat("─", 60))
		if dryRun {
			fmt.Printf("%s Dry run: would fix %d document(s) and %d index file(s)\n",
				yellow("ⓘ"), len(result.Changes), len(result.IndexesWritten))
		} else {
			fmt.Printf("%s Fixed %d document(s) and %d index file(s)\n",
				green("✓"), len(result.Changes), len(result.IndexesWritten))
		}
	},
}

func init() {
	fixCmd.Flags().Bool("dry-run", false, "Report repairs without writing")

	rootCmd.AddCommand(fixCmd)
}
