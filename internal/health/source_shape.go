package health

import (
	"fmt"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

// SourceShapeValidator warns about source entries written as mapping
// fragments instead of plain URL strings. The drifted form usually
// means a document was generated by a tool speaking a richer schema;
// it still parses, but a human should decide what the entry meant.
type SourceShapeValidator struct{}

// NewSourceShapeValidator creates the source-shape rule.
func NewSourceShapeValidator() *SourceShapeValidator {
	return &SourceShapeValidator{}
}

// Name implements Validator.
func (v *SourceShapeValidator) Name() string {
	return "source-shape"
}

// Check implements Validator.
func (v *SourceShapeValidator) Check(d *doc.Document) []types.Issue {
	var issues []types.Issue
	for i, s := range d.Sources {
		if !s.Structured {
			continue
		}
		msg := fmt.Sprintf("source entry %d is a structured mapping, expected a plain URL string", i+1)
		if s.URL != "" {
			msg = fmt.Sprintf("source entry %d is a structured mapping around %s, expected a plain URL string", i+1, s.URL)
		}
		issues = append(issues, types.Issue{
			File:           d.Path,
			Message:        msg,
			Severity:       types.SeverityWarn,
			Validator:      v.Name(),
			Suggestion:     "rewrite the entry as a bare URL or a [title](url) link",
			RequiresReview: true,
		})
	}
	return issues
}
