// Package index generates and verifies per-directory listing files.
//
// Each directory of corpus documents carries one generated index file
// (default `_index.md`): a title heading, an optional human-authored
// preamble, and a two-column table listing every sibling document.
// Regeneration preserves the preamble verbatim, so running it over an
// in-sync tree is a no-op — the drift check relies on that idempotence.
package index

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

const (
	tableHeader  = "| File | Description |"
	tableDivider = "|------|-------------|"

	// placeholder fills the description cell for files whose header
	// cannot be parsed or carries no description.
	placeholder = "—"
)

// Synchronizer generates index files and detects drift between the
// canonical content and what is on disk.
type Synchronizer struct {
	root   string
	conv   doc.Conventions
	parser *doc.Parser
}

// NewSynchronizer creates a Synchronizer for the project rooted at root.
func NewSynchronizer(root string, conv doc.Conventions) *Synchronizer {
	return &Synchronizer{
		root:   root,
		conv:   conv,
		parser: doc.NewParser(conv),
	}
}

// Generate builds the canonical index content for dir (root-relative,
// slash-separated). The preamble, when non-empty, is inserted verbatim
// between the heading and the table.
func (s *Synchronizer) Generate(dir, preamble string) (string, error) {
	files, err := s.listDocs(dir)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(titleCase(path.Base(dir)))
	sb.WriteString("\n\n")

	if preamble != "" {
		sb.WriteString(preamble)
		sb.WriteString("\n\n")
	}

	sb.WriteString(tableHeader)
	sb.WriteString("\n")
	sb.WriteString(tableDivider)
	sb.WriteString("\n")

	for _, name := range files {
		sb.WriteString(fmt.Sprintf("| [%s](%s) | %s |\n", name, name, s.describe(dir, name)))
	}

	return sb.String(), nil
}

// describe returns the one-line description cell for a document,
// falling back to a placeholder when the file cannot be parsed.
func (s *Synchronizer) describe(dir, name string) string {
	rel := path.Join(dir, name)
	data, err := os.ReadFile(s.abs(rel))
	if err != nil {
		return placeholder
	}
	d, err := s.parser.Parse(rel, string(data))
	if err != nil {
		return placeholder
	}
	desc := d.Description
	if i := strings.IndexByte(desc, '\n'); i >= 0 {
		desc = desc[:i]
	}
	desc = strings.TrimSpace(strings.ReplaceAll(desc, "|", `\|`))
	if desc == "" {
		return placeholder
	}
	return desc
}

// ExtractPreamble recovers the human-authored block between the title
// heading and the first table row, trimmed of surrounding blank lines.
// Feeding the result back into Generate reproduces the file when the
// document set is unchanged.
func ExtractPreamble(content string) string {
	lines := strings.Split(content, "\n")

	start := 0
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			start = i + 1
			break
		}
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "|") {
			end = i
			break
		}
	}

	block := lines[start:end]
	for len(block) > 0 && strings.TrimSpace(block[0]) == "" {
		block = block[1:]
	}
	for len(block) > 0 && strings.TrimSpace(block[len(block)-1]) == "" {
		block = block[:len(block)-1]
	}
	return strings.Join(block, "\n")
}

// CheckSync verifies the index file of dir and every subdirectory.
// A directory needs an index only when it directly contains documents.
// Missing index → fail; content drift → fail with a unified diff in
// the suggestion; index in sync but lacking a preamble → warn.
func (s *Synchronizer) CheckSync(dir string) ([]types.Issue, error) {
	entries, err := os.ReadDir(s.abs(dir))
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var issues []types.Issue
	hasDocs := false
	for _, e := range entries {
		if e.IsDir() {
			if strings.HasPrefix(e.Name(), ".") {
				continue
			}
			sub, err := s.CheckSync(path.Join(dir, e.Name()))
			if err != nil {
				return nil, err
			}
			issues = append(issues, sub...)
			continue
		}
		if isMarkdown(e.Name()) && e.Name() != s.conv.IndexFile {
			hasDocs = true
		}
	}
	if !hasDocs {
		return issues, nil
	}

	indexPath := path.Join(dir, s.conv.IndexFile)
	data, err := os.ReadFile(s.abs(indexPath))
	if os.IsNotExist(err) {
		issues = append(issues, types.Issue{
			File:       indexPath,
			Message:    fmt.Sprintf("index file %s is missing", indexPath),
			Severity:   types.SeverityFail,
			Validator:  "index-sync",
			Suggestion: "run `quill index --write` to generate it",
		})
		return issues, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading index %s: %w", indexPath, err)
	}

	existing := string(data)
	preamble := ExtractPreamble(existing)
	want, err := s.Generate(dir, preamble)
	if err != nil {
		return nil, err
	}

	if want != existing {
		issues = append(issues, types.Issue{
			File:       indexPath,
			Message:    fmt.Sprintf("index file %s is out of sync with the directory", indexPath),
			Severity:   types.SeverityFail,
			Validator:  "index-sync",
			Suggestion: unifiedDiff(indexPath, existing, want),
		})
	}
	if preamble == "" {
		issues = append(issues, types.Issue{
			File:       indexPath,
			Message:    "index has no preamble describing the area",
			Severity:   types.SeverityWarn,
			Validator:  "index-sync",
			Suggestion: "add a short paragraph between the heading and the table",
		})
	}

	return issues, nil
}

// Write regenerates dir's index file in place, preserving the preamble
// of any existing index. This is the only write path in the core.
func (s *Synchronizer) Write(dir string) error {
	preamble := ""
	indexPath := path.Join(dir, s.conv.IndexFile)
	if data, err := os.ReadFile(s.abs(indexPath)); err == nil {
		preamble = ExtractPreamble(string(data))
	}

	content, err := s.Generate(dir, preamble)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.abs(indexPath), []byte(content), 0644); err != nil {
		return fmt.Errorf("writing index %s: %w", indexPath, err)
	}
	return nil
}

// WriteAll regenerates the index of dir and of every subdirectory that
// directly contains documents, returning the rewritten index paths.
func (s *Synchronizer) WriteAll(dir string) ([]string, error) {
	entries, err := os.ReadDir(s.abs(dir))
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var written []string
	hasDocs := false
	for _, e := range entries {
		if e.IsDir() {
			if strings.HasPrefix(e.Name(), ".") {
				continue
			}
			sub, err := s.WriteAll(path.Join(dir, e.Name()))
			if err != nil {
				return nil, err
			}
			written = append(written, sub...)
			continue
		}
		if isMarkdown(e.Name()) && e.Name() != s.conv.IndexFile {
			hasDocs = true
		}
	}
	if hasDocs {
		if err := s.Write(dir); err != nil {
			return nil, err
		}
		written = append(written, path.Join(dir, s.conv.IndexFile))
	}

	sort.Strings(written)
	return written, nil
}

func (s *Synchronizer) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// listDocs returns the markdown files directly inside dir, index file
// excluded, in lexicographic order.
func (s *Synchronizer) listDocs(dir string) ([]string, error) {
	entries, err := os.ReadDir(s.abs(dir))
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !isMarkdown(e.Name()) || e.Name() == s.conv.IndexFile {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func isMarkdown(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".md")
}

// unifiedDiff renders the on-disk vs regenerated index contents as a
// unified patch for the issue suggestion.
func unifiedDiff(file, got, want string) string {
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(got),
		B:        difflib.SplitLines(want),
		FromFile: file + " (on disk)",
		ToFile:   file + " (regenerated)",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return strings.TrimRight(text, "\n")
}

// titleCase derives the index heading from a directory name, splitting
// on dashes and underscores.
func titleCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
