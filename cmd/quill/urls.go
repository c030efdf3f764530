package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillctl/quill/internal/config"
	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/urlcheck"
)

var urlsCmd = &cobra.Command{
	Use:   "urls",
	Short: "Probe every cited source URL for reachability",
	Long: `Collect the source URLs cited across the corpus and probe each one
(HEAD first, GET fallback), under the concurrency and rate limits from
the config's url_check section.

Exit codes:
  0 - Every URL reachable (or none cited)
  1 - One or more URLs unreachable`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		timeout, err := cfg.URLCheck.ParseTimeout()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		docs, err := loadCorpus(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		urls := urlcheck.Collect(docs)
		if len(urls) == 0 {
			fmt.Printf("%s No source URLs cited\n", green("✓"))
			return
		}

		fmt.Printf("Probing %d URL(s)...\n\n", len(urls))

		checker := urlcheck.New(timeout, cfg.URLCheck.Concurrency, cfg.URLCheck.RPS)
		results := checker.Check(context.Background(), urls)

		unreachable := 0
		for _, r := range results {
			if r.Reachable {
				fmt.Printf("  %s %s\n", green("✓"), r.URL)
			} else {
				unreachable++
				fmt.Printf("  %s %s (%s)\n", red("✗"), r.URL, r.Reason)
			}
		}

		fmt.Printf("\n%s\n", strings.Repeat("─", 60))
		if unreachable > 0 {
			fmt.Printf("%s %d of %d URL(s) unreachable\n", red("✗"), unreachable, len(results))
			os.Exit(1)
		}
		fmt.Printf("%s All %d URL(s) reachable\n", green("✓"), len(results))
	},
}

func init() {
	rootCmd.AddCommand(urlsCmd)
}

// loadCorpus parses every document under the configured roots. Files
// that do not parse are skipped here; `quill check` is where they get
// reported.
func loadCorpus(cfg *config.Config) ([]*doc.Document, error) {
	conv := cfg.Conventions()
	parser := doc.NewParser(conv)

	var docs []*doc.Document
	for _, dir := range existingRoots(cfg.Roots()) {
		base := filepath.Join(rootDir, filepath.FromSlash(dir))
		err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && p != base {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			rel, err := filepath.Rel(rootDir, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if conv.IsIndex(rel) {
				return nil
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			parsed, err := parser.Parse(rel, string(data))
			if err != nil {
				return nil
			}
			docs = append(docs, parsed)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", dir, err)
		}
	}
	return docs, nil
}
