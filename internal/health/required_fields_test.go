package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

func parseDoc(t *testing.T, path, text string) *doc.Document {
	t.Helper()
	d, err := doc.Parse(path, text)
	require.NoError(t, err)
	return d
}

func TestRequiredFields_MissingDescription(t *testing.T) {
	// The parser accepts a header with only a name; flagging the absent
	// description is this rule's job.
	d := parseDoc(t, "context/api/test.md", "---\nname: Test\n---\nBody\n")

	issues := NewRequiredFieldsValidator().Check(d)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, types.SeverityFail, issue.Severity)
	assert.Equal(t, "required-fields", issue.Validator)
	assert.Equal(t, "context/api/test.md", issue.File)
	assert.Contains(t, issue.Message, "description")
	assert.NoError(t, issue.Validate())
}

func TestRequiredFields_BlankName(t *testing.T) {
	d := parseDoc(t, "context/api/test.md", "---\nname:\ndescription: Fine\n---\n")

	issues := NewRequiredFieldsValidator().Check(d)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "name")
	assert.Equal(t, types.SeverityFail, issues[0].Severity)
}

func TestRequiredFields_BothMissing(t *testing.T) {
	d := parseDoc(t, "context/api/test.md", "---\nname:\n---\n")

	issues := NewRequiredFieldsValidator().Check(d)
	assert.Len(t, issues, 2)
}

func TestRequiredFields_Complete(t *testing.T) {
	d := parseDoc(t, "context/api/test.md", "---\nname: Test\ndescription: All good\n---\n")
	assert.Empty(t, NewRequiredFieldsValidator().Check(d))
}
