package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillctl/quill/internal/health"
	"github.com/quillctl/quill/internal/index"
	"github.com/quillctl/quill/internal/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Check or regenerate directory index files",
	Long: `Compare each directory's _index.md against the documents it holds.

By default drift is reported without changing anything; --write
regenerates every index in place, preserving hand-written preambles.

Examples:
  # Report stale or missing indexes
  quill index

  # Regenerate them
  quill index --write`,
	Run: func(cmd *cobra.Command, args []string) {
		write, _ := cmd.Flags().GetBool("write")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		sync := index.NewSynchronizer(rootDir, cfg.Conventions())

		if write {
			var written []string
			for _, dir := range existingRoots(cfg.Roots()) {
				paths, err := sync.WriteAll(dir)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				written = append(written, paths...)
			}
			for _, p := range written {
				fmt.Printf("  %s %s\n", green("✓"), p)
			}
			fmt.Printf("\n%s Regenerated %d index file(s)\n", green("✓"), len(written))
			return
		}

		var issues []types.Issue
		for _, dir := range existingRoots(cfg.Roots()) {
			found, err := sync.CheckSync(dir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			issues = append(issues, found...)
		}

		if len(issues) == 0 {
			fmt.Printf("%s All index files in sync\n", green("✓"))
			return
		}

		for _, issue := range issues {
			glyph := yellow("⚠")
			if issue.Severity == types.SeverityFail {
				glyph = red("✗")
			}
			fmt.Printf("  %s %s\n", glyph, issue.Message)
		}
		fmt.Printf("\n%s\n", strings.Repeat("─", 60))
		fmt.Printf("%s %d index issue(s); run `quill index --write` to fix drift\n",
			red("✗"), len(issues))

		os.Exit(health.ExitCode(types.StatusFromIssues(issues)))
	},
}

func init() {
	indexCmd.Flags().Bool("write", false, "Regenerate index files in place")

	rootCmd.AddCommand(indexCmd)
}

// existingRoots filters root-relative directories down to those present
// under the project root.
func existingRoots(roots []string) []string {
	var out []string
	for _, dir := range roots {
		info, err := os.Stat(filepath.Join(rootDir, filepath.FromSlash(dir)))
		if err == nil && info.IsDir() {
			out = append(out, dir)
		}
	}
	return out
}
