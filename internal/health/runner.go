package health

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quillctl/quill/internal/budget"
	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/index"
	"github.com/quillctl/quill/internal/types"
	"github.com/quillctl/quill/internal/urlcheck"
)

// Options configures a Runner. The zero value means defaults: standard
// naming conventions, the default word limit and token budget, and the
// context and artifact directories as walk roots.
type Options struct {
	// Conventions is the corpus naming scheme.
	Conventions doc.Conventions

	// WordLimit is the content-length threshold passed to the
	// content-length validator.
	WordLimit int

	// TokenBudget is the corpus-wide token threshold.
	TokenBudget int

	// Roots are the root-relative directories to walk. Defaults to the
	// conventions' context and artifact directories.
	Roots []string

	// URLChecker, when set, probes every cited source URL and folds
	// unreachable ones into the report as warnings. Nil means no
	// network access.
	URLChecker *urlcheck.Checker
}

// Runner walks a project tree, parses every document, runs the
// validator set, the index drift check, the optional URL reachability
// probe, and the token-budget estimate, and merges everything into one
// HealthReport.
type Runner struct {
	conv        doc.Conventions
	parser      *doc.Parser
	validators  []Validator
	corpus      []CorpusValidator
	tokenBudget int
	roots       []string
	urlChecker  *urlcheck.Checker
}

// NewRunner creates a Runner with the default validator set.
func NewRunner(opts Options) *Runner {
	conv := opts.Conventions
	if conv == (doc.Conventions{}) {
		conv = doc.DefaultConventions()
	}
	roots := opts.Roots
	if len(roots) == 0 {
		roots = []string{conv.ContextDir, conv.ArtifactDir}
	}
	return &Runner{
		conv:        conv,
		parser:      doc.NewParser(conv),
		validators:  DefaultValidators(conv, opts.WordLimit),
		corpus:      DefaultCorpusValidators(conv),
		tokenBudget: opts.TokenBudget,
		roots:       roots,
		urlChecker:  opts.URLChecker,
	}
}

// Run checks the project rooted at root and returns its health report.
// Parse failures become per-file fail issues; only environment problems
// (unreadable directories mid-walk) surface as errors.
func (r *Runner) Run(ctx context.Context, root string) (*types.HealthReport, error) {
	start := time.Now()

	docs, issues, filesChecked, err := r.parseTree(ctx, root)
	if err != nil {
		return nil, err
	}

	report := &types.HealthReport{
		RunID:        uuid.New().String(),
		StartedAt:    start.UTC(),
		FilesChecked: filesChecked,
	}

	if filesChecked == 0 {
		report.Status = types.StatusNone
		report.Issues = []types.Issue{}
		report.TokenBudget = budget.Estimate(nil, r.tokenBudget)
		report.DurationMS = time.Since(start).Milliseconds()
		return report, nil
	}

	for _, d := range docs {
		for _, v := range r.validators {
			issues = append(issues, v.Check(d)...)
		}
	}
	for _, v := range r.corpus {
		issues = append(issues, v.CheckCorpus(docs)...)
	}

	sync := index.NewSynchronizer(root, r.conv)
	for _, dir := range r.existingRoots(root) {
		found, err := sync.CheckSync(dir)
		if err != nil {
			return nil, err
		}
		issues = append(issues, found...)
	}

	if r.urlChecker != nil {
		results := r.urlChecker.Check(ctx, urlcheck.Collect(docs))
		issues = append(issues, urlcheck.Issues(docs, results)...)
	}

	b := budget.Estimate(docs, r.tokenBudget)
	if issue := budget.Issue(b); issue != nil {
		issues = append(issues, *issue)
	}

	types.SortIssues(issues)

	report.Status = types.StatusFromIssues(issues)
	report.Issues = issues
	report.TokenBudget = b
	report.DurationMS = time.Since(start).Milliseconds()
	return report, nil
}

// parseTree walks the configured roots and parses every document,
// converting parse failures to fail issues instead of aborting.
func (r *Runner) parseTree(ctx context.Context, root string) ([]*doc.Document, []types.Issue, int, error) {
	var (
		docs   []*doc.Document
		issues []types.Issue
		failed int
	)

	for _, dir := range r.existingRoots(root) {
		base := filepath.Join(root, filepath.FromSlash(dir))
		walkErr := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
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

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			// Index files carry no header; the index synchronizer
			// owns their correctness.
			if r.conv.IsIndex(rel) {
				return nil
			}

			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}

			parsed, err := r.parser.Parse(rel, string(data))
			if err != nil {
				failed++
				issues = append(issues, types.Issue{
					File:       rel,
					Message:    err.Error(),
					Severity:   types.SeverityFail,
					Validator:  "parse",
					Suggestion: "fix the metadata header so the file parses",
				})
				return nil
			}
			docs = append(docs, parsed)
			return nil
		})
		if walkErr != nil {
			return nil, nil, 0, fmt.Errorf("walking %s: %w", dir, walkErr)
		}
	}

	return docs, issues, len(docs) + failed, nil
}

// existingRoots filters the configured walk roots down to directories
// present on disk. A missing root is the "no documents" state, never
// an error.
func (r *Runner) existingRoots(root string) []string {
	var out []string
	for _, dir := range r.roots {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir)))
		if err == nil && info.IsDir() {
			out = append(out, dir)
		}
	}
	return out
}
