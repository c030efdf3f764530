package health

import (
	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

// ResearchSourcesValidator fails research documents that cite nothing.
// A research file exists to capture findings; without sources its
// claims cannot be traced or refreshed.
type ResearchSourcesValidator struct{}

// NewResearchSourcesValidator creates the research-sources rule.
func NewResearchSourcesValidator() *ResearchSourcesValidator {
	return &ResearchSourcesValidator{}
}

// Name implements Validator.
func (v *ResearchSourcesValidator) Name() string {
	return "research-sources"
}

// Check implements Validator.
func (v *ResearchSourcesValidator) Check(d *doc.Document) []types.Issue {
	if d.Type != doc.TypeResearch || len(d.Sources) > 0 {
		return nil
	}
	return []types.Issue{{
		File:       d.Path,
		Message:    "research document has an empty sources list",
		Severity:   types.SeverityFail,
		Validator:  v.Name(),
		Suggestion: "cite at least one URL under sources: in the header",
	}}
}
