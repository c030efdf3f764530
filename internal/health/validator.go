package health

import (
	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

// Validator is one per-document rule. Implementations must be pure:
// same Document in, same Issues out, no filesystem or network access.
type Validator interface {
	// Name returns the stable identifier recorded in Issue.Validator.
	Name() string

	// Check examines one parsed document and returns its findings.
	Check(d *doc.Document) []types.Issue
}

// CorpusValidator is a cross-document rule that sees the whole parsed
// corpus at once, for checks no single document can answer.
type CorpusValidator interface {
	// Name returns the stable identifier recorded in Issue.Validator.
	Name() string

	// CheckCorpus examines all parsed documents together.
	CheckCorpus(docs []*doc.Document) []types.Issue
}

// DefaultValidators returns the standard rule set in execution order.
func DefaultValidators(conv doc.Conventions, wordLimit int) []Validator {
	return []Validator{
		NewRequiredFieldsValidator(),
		NewResearchSourcesValidator(),
		NewSourceShapeValidator(),
		NewRelatedDocsValidator(conv),
		NewContentLengthValidator(conv, wordLimit),
	}
}

// DefaultCorpusValidators returns the standard cross-document rule set.
func DefaultCorpusValidators(conv doc.Conventions) []CorpusValidator {
	return []CorpusValidator{
		NewAreaSyncValidator(conv),
	}
}
