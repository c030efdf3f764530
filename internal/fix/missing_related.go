package fix

import (
	"github.com/quillctl/quill/internal/doc"
)

// MissingRelatedFixer inserts an empty `related:` key into context
// topics and overviews that carry none, clearing the related-docs
// warning without inventing cross-links. The key is placed before the
// first list-valued key so scalar fields stay grouped at the top, or
// at the end of the header when no list key exists.
type MissingRelatedFixer struct {
	conv   doc.Conventions
	parser *doc.Parser
}

// NewMissingRelatedFixer creates the missing-related repair.
func NewMissingRelatedFixer(conv doc.Conventions) *MissingRelatedFixer {
	return &MissingRelatedFixer{conv: conv, parser: doc.NewParser(conv)}
}

// Name implements Fixer.
func (f *MissingRelatedFixer) Name() string {
	return "missing-related"
}

// Fix implements Fixer.
func (f *MissingRelatedFixer) Fix(d *doc.Document) (*doc.Document, bool) {
	if !f.conv.InContextTree(d.Path) || f.conv.IsIndex(d.Path) {
		return nil, false
	}
	if d.Type != doc.TypeTopic && d.Type != doc.TypeOverview {
		return nil, false
	}
	if d.Header.Has("related") {
		return nil, false
	}

	b := doc.NewHeaderBuilder()
	inserted := false
	for _, key := range d.Header.Keys() {
		v, _ := d.Header.Value(key)
		if !inserted && v.Kind == doc.KindList {
			b.Null("related")
			inserted = true
		}
		b.Value(key, v)
	}
	if !inserted {
		b.Null("related")
	}

	fixed, err := f.parser.Parse(d.Path, renderWith(b.Build(), d.Body))
	if err != nil {
		return nil, false
	}
	return fixed, true
}

// renderWith assembles full document text from a header and a body,
// mirroring Document.Render for a replacement header.
func renderWith(h *doc.HeaderMap, body string) string {
	return doc.Delimiter + "\n" + h.Render() + doc.Delimiter + "\n" + body
}
