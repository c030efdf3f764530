package fix

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/index"
	"github.com/quillctl/quill/internal/types"
)

// Options configures an Applier. The zero value means defaults:
// standard conventions, the context and artifact directories as walk
// roots, and writes enabled.
type Options struct {
	// Conventions is the corpus naming scheme.
	Conventions doc.Conventions

	// Roots are the root-relative directories to walk. Defaults to the
	// conventions' context and artifact directories.
	Roots []string

	// DryRun reports what would change without touching any file.
	DryRun bool
}

// Change records one repair, applied or planned.
type Change struct {
	File  string `json:"file"`
	Fixer string `json:"fixer"`
}

// Result is the outcome of one fix pass.
type Result struct {
	Changes        []Change `json:"changes"`
	IndexesWritten []string `json:"indexes_written"`
	DryRun         bool     `json:"dry_run"`
}

// Applier walks a project tree, runs every fixer over every parsed
// document, and rewrites index files flagged as missing or drifted.
type Applier struct {
	conv   doc.Conventions
	parser *doc.Parser
	fixers []Fixer
	roots  []string
	dryRun bool
}

// NewApplier creates an Applier with the default fixer set.
func NewApplier(opts Options) *Applier {
	conv := opts.Conventions
	if conv == (doc.Conventions{}) {
		conv = doc.DefaultConventions()
	}
	roots := opts.Roots
	if len(roots) == 0 {
		roots = []string{conv.ContextDir, conv.ArtifactDir}
	}
	return &Applier{
		conv:   conv,
		parser: doc.NewParser(conv),
		fixers: DefaultFixers(conv),
		roots:  roots,
		dryRun: opts.DryRun,
	}
}

// Apply repairs the project rooted at root. Documents are fixed first
// so index regeneration sees their final content. Apply is idempotent:
// a second pass over a repaired tree changes nothing.
func (a *Applier) Apply(ctx context.Context, root string) (*Result, error) {
	result := &Result{DryRun: a.dryRun}

	for _, dir := range a.existingRoots(root) {
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
			if a.conv.IsIndex(rel) {
				return nil
			}

			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			parsed, err := a.parser.Parse(rel, string(data))
			if err != nil {
				// Unparsable documents need a human; fixers only see
				// well-formed input.
				return nil
			}

			changed := false
			for _, f := range a.fixers {
				fixed, ok := f.Fix(parsed)
				if !ok {
					continue
				}
				parsed = fixed
				changed = true
				result.Changes = append(result.Changes, Change{File: rel, Fixer: f.Name()})
			}
			if changed && !a.dryRun {
				if err := os.WriteFile(p, []byte(parsed.Render()), 0644); err != nil {
					return fmt.Errorf("writing %s: %w", rel, err)
				}
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walking %s: %w", dir, walkErr)
		}
	}

	indexes, err := a.repairIndexes(root)
	if err != nil {
		return nil, err
	}
	result.IndexesWritten = indexes
	return result, nil
}

// repairIndexes rewrites index files the drift check flags as missing
// or out of sync. The missing-preamble warning is left alone: a
// preamble is prose no tool should invent.
func (a *Applier) repairIndexes(root string) ([]string, error) {
	sync := index.NewSynchronizer(root, a.conv)
	seen := make(map[string]bool)
	var written []string

	for _, dir := range a.existingRoots(root) {
		issues, err := sync.CheckSync(dir)
		if err != nil {
			return nil, err
		}
		for _, issue := range issues {
			if issue.Severity != types.SeverityFail || seen[issue.File] {
				continue
			}
			seen[issue.File] = true
			if !a.dryRun {
				if err := sync.Write(path.Dir(issue.File)); err != nil {
					return nil, err
				}
			}
			written = append(written, issue.File)
		}
	}

	sort.Strings(written)
	return written, nil
}

// existingRoots filters the configured walk roots down to directories
// present on disk.
func (a *Applier) existingRoots(root string) []string {
	var out []string
	for _, dir := range a.roots {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir)))
		if err == nil && info.IsDir() {
			out = append(out, dir)
		}
	}
	return out
}
