// Command quill keeps a corpus of structured markdown documents
// healthy. It validates document structure and cross-document
// consistency, keeps per-directory _index.md listings in sync,
// estimates the corpus token budget, probes cited URLs, and records
// health history across runs.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillctl/quill/internal/config"
)

var (
	rootDir    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Keep a structured markdown context corpus healthy",
	Long: `quill manages a corpus of structured markdown documents ("context" and
"artifact" files) that feed an AI agent's working context.

Documents carry a restricted metadata header (name, description, type,
sources, related) over a sectioned markdown body. quill validates them,
keeps per-directory _index.md listings in sync with the files on disk,
estimates the corpus token budget, and aggregates everything into a
single health report.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "C", ".", "Project root directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <root>/.quill.yml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the project config. An explicitly given --config
// file must exist; the default location falls back to built-in
// defaults when absent.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadOrDefault(filepath.Join(rootDir, config.DefaultFileName))
}
