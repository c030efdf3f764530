package health

import (
	"fmt"
	"strings"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

// RequiredFieldsValidator fails documents whose identifying header
// fields are missing or blank. The parser only insists on the `name`
// key being present; judging blank names and absent descriptions is
// this rule's job so a batch run reports them instead of aborting.
type RequiredFieldsValidator struct{}

// NewRequiredFieldsValidator creates the required-fields rule.
func NewRequiredFieldsValidator() *RequiredFieldsValidator {
	return &RequiredFieldsValidator{}
}

// Name implements Validator.
func (v *RequiredFieldsValidator) Name() string {
	return "required-fields"
}

// Check implements Validator.
func (v *RequiredFieldsValidator) Check(d *doc.Document) []types.Issue {
	var issues []types.Issue
	if strings.TrimSpace(d.Name) == "" {
		issues = append(issues, types.Issue{
			File:       d.Path,
			Message:    `header field "name" is missing or blank`,
			Severity:   types.SeverityFail,
			Validator:  v.Name(),
			Suggestion: "set name: to a short identifying title",
		})
	}
	if strings.TrimSpace(d.Description) == "" {
		issues = append(issues, types.Issue{
			File:       d.Path,
			Message:    `header field "description" is missing or blank`,
			Severity:   types.SeverityFail,
			Validator:  v.Name(),
			Suggestion: fmt.Sprintf("add a one-line description: to the header of %s", d.Path),
		})
	}
	return issues
}
