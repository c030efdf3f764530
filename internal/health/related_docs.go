package health

import (
	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

// RelatedDocsValidator warns about context-tree documents that carry no
// `related:` key at all. An empty list is fine: it records that the
// author considered cross-links; a missing key means nobody did.
type RelatedDocsValidator struct {
	conv doc.Conventions
}

// NewRelatedDocsValidator creates the related-docs rule.
func NewRelatedDocsValidator(conv doc.Conventions) *RelatedDocsValidator {
	return &RelatedDocsValidator{conv: conv}
}

// Name implements Validator.
func (v *RelatedDocsValidator) Name() string {
	return "related-docs"
}

// Check implements Validator.
func (v *RelatedDocsValidator) Check(d *doc.Document) []types.Issue {
	if !v.conv.InContextTree(d.Path) || v.conv.IsIndex(d.Path) {
		return nil
	}
	if d.Type != doc.TypeTopic && d.Type != doc.TypeOverview {
		return nil
	}
	if d.Header.Has("related") {
		return nil
	}
	return []types.Issue{{
		File:       d.Path,
		Message:    "header has no related: key",
		Severity:   types.SeverityWarn,
		Validator:  v.Name(),
		Suggestion: "add a related: list pointing at adjacent context documents",
	}}
}
