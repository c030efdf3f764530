package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
}

func newTestSync(t *testing.T) (*Synchronizer, string) {
	t.Helper()
	root := t.TempDir()
	return NewSynchronizer(root, doc.DefaultConventions()), root
}

func docText(name, description string) string {
	return "---\nname: " + name + "\ndescription: " + description + "\n---\n"
}

func TestGenerate(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/auth/tokens.md", docText("Tokens", "How tokens rotate"))
	writeFile(t, root, "context/auth/sessions.md", docText("Sessions", "Session lifetimes"))

	got, err := s.Generate("context/auth", "")
	require.NoError(t, err)

	want := "# Auth\n" +
		"\n" +
		"| File | Description |\n" +
		"|------|-------------|\n" +
		"| [sessions.md](sessions.md) | Session lifetimes |\n" +
		"| [tokens.md](tokens.md) | How tokens rotate |\n"
	assert.Equal(t, want, got)
}

func TestGenerateWithPreamble(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/auth/tokens.md", docText("Tokens", "How tokens rotate"))

	got, err := s.Generate("context/auth", "Everything about authentication.\nStart with tokens.")
	require.NoError(t, err)

	want := "# Auth\n" +
		"\n" +
		"Everything about authentication.\nStart with tokens.\n" +
		"\n" +
		"| File | Description |\n" +
		"|------|-------------|\n" +
		"| [tokens.md](tokens.md) | How tokens rotate |\n"
	assert.Equal(t, want, got)
}

func TestGenerateDescriptionCells(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/a/piped.md", docText("Piped", "uses | pipes"))
	writeFile(t, root, "context/a/broken.md", "no header here\n")
	writeFile(t, root, "context/a/blank.md", "---\nname: Blank\n---\n")

	got, err := s.Generate("context/a", "")
	require.NoError(t, err)

	assert.Contains(t, got, `| [piped.md](piped.md) | uses \| pipes |`)
	assert.Contains(t, got, "| [broken.md](broken.md) | — |")
	assert.Contains(t, got, "| [blank.md](blank.md) | — |")
}

func TestGenerateSkipsIndexAndNonMarkdown(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/a/topic.md", docText("T", "D"))
	writeFile(t, root, "context/a/_index.md", "# A\n")
	writeFile(t, root, "context/a/notes.txt", "not markdown")

	got, err := s.Generate("context/a", "")
	require.NoError(t, err)

	assert.Contains(t, got, "topic.md")
	assert.NotContains(t, got, "_index.md")
	assert.NotContains(t, got, "notes.txt")
}

func TestGenerateTitleCasing(t *testing.T) {
	cases := []struct{ dir, want string }{
		{"context/auth", "# Auth"},
		{"context/api-gateway", "# Api Gateway"},
		{"context/rate_limits", "# Rate Limits"},
	}
	s, root := newTestSync(t)
	for _, tc := range cases {
		writeFile(t, root, tc.dir+"/x.md", docText("X", "D"))
		got, err := s.Generate(tc.dir, "")
		require.NoError(t, err)
		assert.Contains(t, got, tc.want+"\n")
	}
}

func TestExtractPreamble(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			"no preamble",
			"# Auth\n\n| File | Description |\n|------|-------------|\n",
			"",
		},
		{
			"single paragraph",
			"# Auth\n\nAll about auth.\n\n| File | Description |\n|------|-------------|\n",
			"All about auth.",
		},
		{
			"multi line",
			"# Auth\n\nLine one.\nLine two.\n\n| File | Description |\n",
			"Line one.\nLine two.",
		},
		{
			"no table",
			"# Auth\n\nJust prose.\n",
			"Just prose.",
		},
		{
			"no heading",
			"Prose only.\n\n| File | Description |\n",
			"Prose only.",
		},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractPreamble(tc.content))
		})
	}
}

// TestGenerateExtractRoundTrip pins the idempotence contract: extracting
// the preamble from generated content and regenerating with it is a
// fixed point.
func TestGenerateExtractRoundTrip(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/auth/tokens.md", docText("Tokens", "How tokens rotate"))

	for _, preamble := range []string{"", "One paragraph.", "Two\nlines."} {
		first, err := s.Generate("context/auth", preamble)
		require.NoError(t, err)

		again, err := s.Generate("context/auth", ExtractPreamble(first))
		require.NoError(t, err)
		assert.Equal(t, first, again, "preamble %q", preamble)
	}
}

func TestCheckSyncMissingIndex(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/api/routes.md", docText("Routes", "Routing table"))

	issues, err := s.CheckSync("context")
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, "context/api/_index.md", issues[0].File)
	assert.Equal(t, types.SeverityFail, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "missing")
}

// TestCheckSyncStaleIndex covers a directory of three documents whose
// index predates the third: exactly one fail naming the index file.
func TestCheckSyncStaleIndex(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/api/routes.md", docText("Routes", "Routing table"))
	writeFile(t, root, "context/api/auth.md", docText("Auth", "Authentication"))

	stale, err := s.Generate("context/api", "The API area.")
	require.NoError(t, err)
	writeFile(t, root, "context/api/_index.md", stale)

	// Third document arrives after the index was written.
	writeFile(t, root, "context/api/errors.md", docText("Errors", "Error catalog"))

	issues, err := s.CheckSync("context/api")
	require.NoError(t, err)

	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, types.SeverityFail, issue.Severity)
	assert.Equal(t, "context/api/_index.md", issue.File)
	assert.Contains(t, issue.Message, "out of sync")
	assert.Contains(t, issue.Suggestion, "errors.md")
	assert.Contains(t, issue.Suggestion, "+")
}

func TestCheckSyncMissingPreamble(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/api/routes.md", docText("Routes", "Routing table"))

	content, err := s.Generate("context/api", "")
	require.NoError(t, err)
	writeFile(t, root, "context/api/_index.md", content)

	issues, err := s.CheckSync("context/api")
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, types.SeverityWarn, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "preamble")
}

func TestCheckSyncCleanTree(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/api/routes.md", docText("Routes", "Routing table"))

	content, err := s.Generate("context/api", "The API area.")
	require.NoError(t, err)
	writeFile(t, root, "context/api/_index.md", content)

	issues, err := s.CheckSync("context")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheckSyncRecurses(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/a/one.md", docText("One", "First"))
	writeFile(t, root, "context/a/deep/two.md", docText("Two", "Second"))

	issues, err := s.CheckSync("context")
	require.NoError(t, err)

	var files []string
	for _, issue := range issues {
		files = append(files, issue.File)
	}
	assert.Contains(t, files, "context/a/_index.md")
	assert.Contains(t, files, "context/a/deep/_index.md")
}

func TestCheckSyncSkipsDocFreeDirs(t *testing.T) {
	s, root := newTestSync(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "context", "empty"), 0755))
	writeFile(t, root, "context/full/doc.md", docText("Doc", "D"))

	issues, err := s.CheckSync("context")
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, "context/full/_index.md", issues[0].File)
}

func TestWritePreservesPreamble(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/a/one.md", docText("One", "First"))

	content, err := s.Generate("context/a", "Keep me.")
	require.NoError(t, err)
	writeFile(t, root, "context/a/_index.md", content)

	// New file appears; rewrite must keep the human preamble.
	writeFile(t, root, "context/a/two.md", docText("Two", "Second"))
	require.NoError(t, s.Write("context/a"))

	data, err := os.ReadFile(filepath.Join(root, "context", "a", "_index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Keep me.")
	assert.Contains(t, string(data), "two.md")

	issues, err := s.CheckSync("context/a")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestWriteAll(t *testing.T) {
	s, root := newTestSync(t)
	writeFile(t, root, "context/a/one.md", docText("One", "First"))
	writeFile(t, root, "context/a/plans/plan.md", docText("Plan", "Q3"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "context", "bare"), 0755))

	written, err := s.WriteAll("context")
	require.NoError(t, err)
	assert.Equal(t, []string{"context/a/_index.md", "context/a/plans/_index.md"}, written)

	for _, rel := range written {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		assert.NoError(t, err)
	}
}

func TestCheckSyncMissingDir(t *testing.T) {
	s, _ := newTestSync(t)
	_, err := s.CheckSync("context/nope")
	assert.Error(t, err)
}
