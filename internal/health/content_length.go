package health

import (
	"fmt"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

// DefaultWordLimit is the body word count above which a context
// document draws a content-length warning.
const DefaultWordLimit = 800

// ContentLengthValidator warns about context documents whose body has
// grown past the word limit. Long documents crowd out the rest of the
// corpus when assembled into a working context, so the limit is
// advisory pressure toward splitting, never a hard failure.
type ContentLengthValidator struct {
	conv doc.Conventions

	// WordLimit is the advisory threshold; DefaultWordLimit when the
	// constructor receives a non-positive value.
	WordLimit int
}

// NewContentLengthValidator creates the content-length rule.
func NewContentLengthValidator(conv doc.Conventions, wordLimit int) *ContentLengthValidator {
	if wordLimit <= 0 {
		wordLimit = DefaultWordLimit
	}
	return &ContentLengthValidator{conv: conv, WordLimit: wordLimit}
}

// Name implements Validator.
func (v *ContentLengthValidator) Name() string {
	return "content-length"
}

// Check implements Validator.
func (v *ContentLengthValidator) Check(d *doc.Document) []types.Issue {
	if !v.conv.InContextTree(d.Path) || v.conv.IsIndex(d.Path) {
		return nil
	}
	words := d.WordCount()
	if words <= v.WordLimit {
		return nil
	}
	return []types.Issue{{
		File:       d.Path,
		Message:    fmt.Sprintf("body is %d words, over the %d-word limit", words, v.WordLimit),
		Severity:   types.SeverityWarn,
		Validator:  v.Name(),
		Suggestion: "split the document into narrower topics",
	}}
}
