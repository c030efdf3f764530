package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillctl/quill/internal/config"
)

// seedPreambles is the starter text for each root's index file. The
// preamble survives every later regeneration, so it is worth seeding.
var seedPreambles = map[string]string{
	"context":   "Documents that feed the agent's working context.",
	"artifacts": "Generated reports and research artifacts.",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a quill project",
	Long: `Write the default .quill.yml and create the context and artifact
directory skeleton with seed index files.

Existing files are never overwritten.`,
	Run: func(cmd *cobra.Command, args []string) {
		green := color.New(color.FgGreen).SprintFunc()

		cfgPath := filepath.Join(rootDir, config.DefaultFileName)
		if _, err := os.Stat(cfgPath); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists\n", cfgPath)
			os.Exit(1)
		}
		if err := config.SaveDefaultConfig(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Wrote %s\n", green("✓"), config.DefaultFileName)

		cfg := config.DefaultConfig()
		for _, dir := range cfg.Roots() {
			abs := filepath.Join(rootDir, filepath.FromSlash(dir))
			if err := os.MkdirAll(abs, 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("%s Created %s/\n", green("✓"), dir)

			indexPath := filepath.Join(abs, cfg.IndexFile)
			if _, err := os.Stat(indexPath); err == nil {
				continue
			}
			seed := seedIndex(dir)
			if err := os.WriteFile(indexPath, []byte(seed), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("%s Seeded %s\n", green("✓"), filepath.ToSlash(filepath.Join(dir, cfg.IndexFile)))
		}

		fmt.Printf("\n%s Project initialized. Add documents and run `quill check`.\n", green("✓"))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// seedIndex builds a starter index: a heading plus a preamble, no
// table yet. `quill index --write` grows the table as documents land.
func seedIndex(dir string) string {
	title := strings.ToUpper(dir[:1]) + dir[1:]
	preamble, ok := seedPreambles[dir]
	if !ok {
		preamble = "Documents in this directory."
	}
	return fmt.Sprintf("# %s\n\n%s\n", title, preamble)
}
