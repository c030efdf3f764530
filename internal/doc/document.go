package doc

import (
	"fmt"
	"path"
	"strings"
)

// DocType discriminates the five document kinds the corpus carries.
// Validators branch on this instead of relying on per-type subclassing.
type DocType string

const (
	TypeTopic    DocType = "topic"
	TypeOverview DocType = "overview"
	TypeResearch DocType = "research"
	TypePlan     DocType = "plan"
	TypeNote     DocType = "note"
)

// IsValid checks if the document type value is valid
func (t DocType) IsValid() bool {
	switch t {
	case TypeTopic, TypeOverview, TypeResearch, TypePlan, TypeNote:
		return true
	}
	return false
}

// Conventions captures the directory and file naming scheme of a corpus.
// The scheme is configuration, not business logic: every name here can
// be overridden in .quill.yml.
type Conventions struct {
	ContextDir   string // root of context areas, e.g. "context"
	ArtifactDir  string // root of generated artifacts, e.g. "artifacts"
	IndexFile    string // per-directory listing file, e.g. "_index.md"
	OverviewFile string // area overview filename, e.g. "_overview.md"
	PlansDir     string // directory whose documents default to type plan
}

// DefaultConventions returns the naming scheme quill assumes when no
// config overrides it.
func DefaultConventions() Conventions {
	return Conventions{
		ContextDir:   "context",
		ArtifactDir:  "artifacts",
		IndexFile:    "_index.md",
		OverviewFile: "_overview.md",
		PlansDir:     "plans",
	}
}

// IsIndex reports whether p names a generated index file.
func (c Conventions) IsIndex(p string) bool {
	return path.Base(filepathToSlash(p)) == c.IndexFile
}

// InContextTree reports whether p lies under the context directory.
func (c Conventions) InContextTree(p string) bool {
	slash := filepathToSlash(p)
	return slash == c.ContextDir ||
		strings.HasPrefix(slash, c.ContextDir+"/") ||
		strings.Contains(slash, "/"+c.ContextDir+"/")
}

// inPlansTree reports whether p lies under the plans directory.
func (c Conventions) inPlansTree(p string) bool {
	slash := filepathToSlash(p)
	return strings.HasPrefix(slash, c.PlansDir+"/") ||
		strings.Contains(slash, "/"+c.PlansDir+"/")
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// Source is one citation record from a document's sources list.
// Structured marks entries that were written as mapping fragments
// ("url: ..." or "{...}") instead of plain URL strings, a schema
// drift signal the validators warn about.
type Source struct {
	URL        string
	Title      string
	Structured bool
}

// Section is one second-level-heading block of a document body.
// Content excludes the heading line itself.
type Section struct {
	Name      string
	Content   string
	LineStart int
	LineEnd   int
}

// Document is one parsed corpus file. It is constructed by Parse and
// never mutated afterwards; auto-fixes build a new Document.
type Document struct {
	Path        string // root-relative path, identity within a project
	Type        DocType
	TypeRaw     string // declared type string as written, "" when inferred
	Name        string
	Description string
	Title       string // first top-level heading's text
	Sources     []Source
	Related     []string
	Sections    []Section
	Header      *HeaderMap
	RawContent  string // full original text
	Body        string // text after the closing header delimiter

	// Line positions (1-based), for diagnostics only.
	FrontmatterEnd int
	TitleLine      int
}

// MissingFieldError reports a required header key absent at parse time.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required header field %q", e.Path, e.Field)
}

// Parser turns raw file text into Documents under a naming scheme.
type Parser struct {
	Conventions Conventions
}

// NewParser creates a Parser with the given conventions.
func NewParser(conv Conventions) *Parser {
	return &Parser{Conventions: conv}
}

// Parse parses one document with the default conventions.
func Parse(docPath, text string) (*Document, error) {
	return NewParser(DefaultConventions()).Parse(docPath, text)
}

// Parse splits text into header and body, resolves the document type,
// and sections the body. A document must carry a `name` header key;
// every other field degrades to its zero value and is left to the
// validators to judge.
func (p *Parser) Parse(docPath, text string) (*Document, error) {
	if docPath == "" {
		return nil, fmt.Errorf("document path must not be empty")
	}

	header, body, err := ParseHeader(text)
	if err != nil {
		return nil, err
	}
	if !header.Has("name") {
		return nil, &MissingFieldError{Path: docPath, Field: "name"}
	}

	d := &Document{
		Path:        docPath,
		Name:        header.Get("name"),
		Description: header.Get("description"),
		Sources:     parseSources(header.List("sources")),
		Related:     header.List("related"),
		Header:      header,
		RawContent:  text,
		Body:        body,
	}
	d.Type, d.TypeRaw = p.resolveType(docPath, header)
	d.FrontmatterEnd = frontmatterEndLine(text, body)
	d.Sections, d.Title, d.TitleLine = splitSections(body, d.FrontmatterEnd+1)

	return d, nil
}

// resolveType reads the declared type from the header (`type`, falling
// back to `document_type`) or infers one from the path: the overview
// filename maps to overview, anything under the plans directory to
// plan, everything else to topic. Unknown declared types keep their
// raw spelling and behave like notes.
func (p *Parser) resolveType(docPath string, header *HeaderMap) (DocType, string) {
	declared := header.Get("type")
	if declared == "" {
		declared = header.Get("document_type")
	}
	if declared != "" {
		t := DocType(strings.ToLower(strings.TrimSpace(declared)))
		if t.IsValid() {
			return t, declared
		}
		return TypeNote, declared
	}

	base := path.Base(filepathToSlash(docPath))
	switch {
	case base == p.Conventions.OverviewFile:
		return TypeOverview, ""
	case p.Conventions.inPlansTree(docPath):
		return TypePlan, ""
	default:
		return TypeTopic, ""
	}
}

// parseSources maps raw list items to Sources. Three spellings appear
// in real corpora: a bare URL, a markdown link `[title](url)`, and the
// drifted mapping form (`url: ...` or `{...}`) that marks the entry
// structured.
func parseSources(items []string) []Source {
	sources := make([]Source, 0, len(items))
	for _, item := range items {
		switch {
		case strings.HasPrefix(item, "url:") || strings.HasPrefix(item, "{"):
			sources = append(sources, Source{
				URL:        extractStructuredURL(item),
				Structured: true,
			})
		default:
			if title, url, ok := ParseLink(item); ok {
				sources = append(sources, Source{URL: url, Title: title})
				continue
			}
			sources = append(sources, Source{URL: item})
		}
	}
	return sources
}

// extractStructuredURL pulls the url value out of a mapping-style
// source entry, best effort.
func extractStructuredURL(item string) string {
	idx := strings.Index(item, "url:")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(item[idx+len("url:"):])
	if end := strings.IndexAny(rest, ",}"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// ParseLink splits a markdown link `[title](target)` into its parts.
// ok is false when item is not link-shaped.
func ParseLink(item string) (title, target string, ok bool) {
	if !strings.HasPrefix(item, "[") {
		return "", "", false
	}
	sep := strings.Index(item, "](")
	if sep < 0 {
		return "", "", false
	}
	title = strings.TrimPrefix(item[:sep], "[")
	rest := item[sep+2:]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return "", "", false
	}
	return strings.TrimSpace(title), strings.TrimSpace(rest[:end]), true
}

// frontmatterEndLine computes the 1-based line number of the closing
// delimiter by counting newlines up to the body's start offset.
func frontmatterEndLine(text, body string) int {
	offset := len(text) - len(body)
	n := strings.Count(text[:offset], "\n")
	if offset > 0 && text[offset-1] != '\n' {
		n++
	}
	return n
}

// splitSections cuts the body on `## ` heading lines. Text before the
// first heading belongs to no section; its first `# ` line supplies the
// document title. Section content is preserved verbatim, then trimmed
// of leading and trailing blank lines only.
func splitSections(body string, firstLine int) ([]Section, string, int) {
	type rawSection struct {
		name      string
		lineStart int
		lines     []string
	}

	var (
		preface      []string
		prefaceStart = firstLine
		raws         []rawSection
	)

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		noCR := strings.TrimRight(line, "\r")
		if strings.HasPrefix(noCR, "## ") {
			raws = append(raws, rawSection{
				name:      strings.TrimSpace(noCR[3:]),
				lineStart: firstLine + i,
			})
			continue
		}
		if len(raws) == 0 {
			preface = append(preface, noCR)
		} else {
			raws[len(raws)-1].lines = append(raws[len(raws)-1].lines, noCR)
		}
	}

	title, titleLine := extractTitle(preface, prefaceStart)

	sections := make([]Section, 0, len(raws))
	for _, raw := range raws {
		kept, leading := trimBlankLines(raw.lines)
		s := Section{
			Name:      raw.name,
			Content:   strings.Join(kept, "\n"),
			LineStart: raw.lineStart,
			LineEnd:   raw.lineStart,
		}
		if len(kept) > 0 {
			s.LineEnd = raw.lineStart + leading + len(kept)
		}
		sections = append(sections, s)
	}

	return sections, title, titleLine
}

// extractTitle finds the first top-level `# ` heading among the preface
// lines, returning its text and line number (0 when absent).
func extractTitle(preface []string, firstLine int) (string, int) {
	for i, line := range preface {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:]), firstLine + i
		}
	}
	return "", 0
}

// trimBlankLines strips fully blank lines from both ends, returning the
// kept slice and how many leading lines were dropped.
func trimBlankLines(lines []string) ([]string, int) {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end], start
}

// Section returns the first section with the given name. Section names
// are not required to be unique; lookups use first match.
func (d *Document) Section(name string) (*Section, bool) {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i], true
		}
	}
	return nil, false
}

// WordCount counts whitespace-separated words in the body. The header
// block never contributes to content-length checks or token estimates.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.Body))
}

// Render regenerates the document's markdown from its parsed parts:
// delimiter, re-serialized header, delimiter, original body. Comments
// and blank lines inside the original header are not preserved.
func (d *Document) Render() string {
	var sb strings.Builder
	sb.WriteString(Delimiter)
	sb.WriteString("\n")
	sb.WriteString(d.Header.Render())
	sb.WriteString(Delimiter)
	sb.WriteString("\n")
	sb.WriteString(d.Body)
	return sb.String()
}
