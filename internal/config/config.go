package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/quillctl/quill/internal/doc"
)

// DefaultFileName is the config file quill looks for at the project root.
const DefaultFileName = ".quill.yml"

// maxSupportedMajor is the highest config schema major version this
// build understands. Configs declaring a higher major are rejected so
// an old binary never silently misreads a newer schema.
const maxSupportedMajor = 1

// Config represents the project configuration loaded from .quill.yml.
// Every field has a default; a missing config file means an all-default
// Config, and a partial file overrides only the keys it names.
type Config struct {
	// Version is the config schema version, e.g. "1"
	Version string `yaml:"version"`

	// ContextDir is the root directory of context areas
	ContextDir string `yaml:"context_dir"`

	// ArtifactDir is the root directory of generated artifacts
	ArtifactDir string `yaml:"artifact_dir"`

	// IndexFile is the per-directory listing filename
	IndexFile string `yaml:"index_file"`

	// OverviewFile is the area overview filename
	OverviewFile string `yaml:"overview_file"`

	// PlansDir is the directory whose documents default to type plan
	PlansDir string `yaml:"plans_dir"`

	// WordLimit is the body length above which a document draws a
	// content-length warning
	WordLimit int `yaml:"word_limit"`

	// TokenBudget is the corpus-wide estimated-token threshold
	TokenBudget int `yaml:"token_budget"`

	// URLCheck configures source URL reachability checking
	URLCheck URLCheckConfig `yaml:"url_check"`
}

// URLCheckConfig configures the source URL reachability checker.
type URLCheckConfig struct {
	// Enabled controls whether `quill check` probes source URLs
	Enabled bool `yaml:"enabled"`

	// Timeout is the per-request timeout, e.g. "10s"
	Timeout string `yaml:"timeout"`

	// Concurrency caps in-flight requests
	Concurrency int `yaml:"concurrency"`

	// RPS caps outbound requests per second
	RPS float64 `yaml:"rps"`
}

// DefaultConfig returns the configuration quill assumes when no
// .quill.yml exists.
func DefaultConfig() *Config {
	return &Config{
		Version:      "1",
		ContextDir:   "context",
		ArtifactDir:  "artifacts",
		IndexFile:    "_index.md",
		OverviewFile: "_overview.md",
		PlansDir:     "plans",
		WordLimit:    800,
		TokenBudget:  24000,
		URLCheck: URLCheckConfig{
			Enabled:     false,
			Timeout:     "10s",
			Concurrency: 8,
			RPS:         4,
		},
	}
}

// Load reads and validates a config file. Keys absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := config.checkVersion(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// LoadOrDefault loads the config at path, falling back to defaults when
// the file does not exist. Any other read or parse failure is an error.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// SaveDefaultConfig writes the default configuration to a file.
func SaveDefaultConfig(path string) error {
	return DefaultConfig().Save(path)
}

// checkVersion gates the config schema version. Versions are compared
// by semver major; "1" and "1.2" both normalize to major v1.
func (c *Config) checkVersion() error {
	v := c.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid config version %q", c.Version)
	}
	if semver.Compare(semver.Major(v), fmt.Sprintf("v%d", maxSupportedMajor)) > 0 {
		return fmt.Errorf("config version %s is newer than this quill supports (max %d); upgrade quill",
			c.Version, maxSupportedMajor)
	}
	return nil
}

// Validate checks if the configuration has valid values.
func (c *Config) Validate() error {
	if c.ContextDir == "" {
		return fmt.Errorf("context_dir must not be empty")
	}
	if c.ArtifactDir == "" {
		return fmt.Errorf("artifact_dir must not be empty")
	}
	if c.IndexFile == "" {
		return fmt.Errorf("index_file must not be empty")
	}
	if c.OverviewFile == "" {
		return fmt.Errorf("overview_file must not be empty")
	}
	if c.PlansDir == "" {
		return fmt.Errorf("plans_dir must not be empty")
	}
	if c.WordLimit < 1 {
		return fmt.Errorf("word_limit must be at least 1 (got %d)", c.WordLimit)
	}
	if c.TokenBudget < 1 {
		return fmt.Errorf("token_budget must be at least 1 (got %d)", c.TokenBudget)
	}
	if c.URLCheck.Concurrency < 1 {
		return fmt.Errorf("url_check.concurrency must be at least 1 (got %d)", c.URLCheck.Concurrency)
	}
	if c.URLCheck.RPS <= 0 {
		return fmt.Errorf("url_check.rps must be positive (got %g)", c.URLCheck.RPS)
	}
	if _, err := c.URLCheck.ParseTimeout(); err != nil {
		return fmt.Errorf("invalid url_check.timeout %q: %w", c.URLCheck.Timeout, err)
	}
	return nil
}

// ParseTimeout parses the per-request timeout string.
func (u URLCheckConfig) ParseTimeout() (time.Duration, error) {
	return time.ParseDuration(u.Timeout)
}

// Conventions maps the naming-scheme fields onto the document parser's
// conventions type.
func (c *Config) Conventions() doc.Conventions {
	return doc.Conventions{
		ContextDir:   c.ContextDir,
		ArtifactDir:  c.ArtifactDir,
		IndexFile:    c.IndexFile,
		OverviewFile: c.OverviewFile,
		PlansDir:     c.PlansDir,
	}
}

// Roots returns the directories `quill check` walks, in walk order.
func (c *Config) Roots() []string {
	return []string{c.ContextDir, c.ArtifactDir}
}
