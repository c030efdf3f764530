package fix

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func readBack(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestApply_RepairsTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"context/api/_overview.md": "---\n" +
			"name: API\n" +
			"description: The API area\n" +
			"topics:\n" +
			"  - [Routes](routes.md)\n" +
			"---\n",
		"context/api/routes.md": "---\nname: Routes\ndescription: Request routing\n---\nBody.\n",
	})

	result, err := NewApplier(Options{}).Apply(context.Background(), root)
	require.NoError(t, err)
	assert.False(t, result.DryRun)

	require.Len(t, result.Changes, 2)
	assert.Equal(t, Change{File: "context/api/_overview.md", Fixer: "missing-related"}, result.Changes[0])
	assert.Equal(t, Change{File: "context/api/routes.md", Fixer: "missing-related"}, result.Changes[1])

	// related: lands before the topics list in the overview, at the
	// header end in the topic.
	assert.Contains(t, readBack(t, root, "context/api/_overview.md"), "related:\ntopics:")
	assert.Contains(t, readBack(t, root, "context/api/routes.md"), "related:\n---")

	assert.Equal(t, []string{"context/api/_index.md"}, result.IndexesWritten)
	assert.Contains(t, readBack(t, root, "context/api/_index.md"), "[routes.md](routes.md)")

	// A second pass over the repaired tree is a no-op.
	again, err := NewApplier(Options{}).Apply(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, again.Changes)
	assert.Empty(t, again.IndexesWritten)
}

func TestApply_DryRunTouchesNothing(t *testing.T) {
	root := t.TempDir()
	original := "---\nname: Routes\ndescription: D\n---\nBody.\n"
	writeTree(t, root, map[string]string{
		"context/api/routes.md": original,
	})

	result, err := NewApplier(Options{DryRun: true}).Apply(context.Background(), root)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Len(t, result.Changes, 1)
	assert.Equal(t, []string{"context/api/_index.md"}, result.IndexesWritten)

	assert.Equal(t, original, readBack(t, root, "context/api/routes.md"))
	_, statErr := os.Stat(filepath.Join(root, "context", "api", "_index.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestApply_SkipsUnparsable(t *testing.T) {
	root := t.TempDir()
	original := "prose without any header\n"
	writeTree(t, root, map[string]string{
		"context/api/broken.md": original,
	})

	result, err := NewApplier(Options{}).Apply(context.Background(), root)
	require.NoError(t, err)

	assert.Empty(t, result.Changes)
	assert.Equal(t, original, readBack(t, root, "context/api/broken.md"))
}

func TestApply_RewritesDriftedIndexPreservingPreamble(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"context/api/routes.md": "---\nname: Routes\ndescription: Request routing\nrelated:\n---\n",
		"context/api/_index.md": "# Api\n\nThe API area.\n",
	})

	result, err := NewApplier(Options{}).Apply(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"context/api/_index.md"}, result.IndexesWritten)
	got := readBack(t, root, "context/api/_index.md")
	assert.Contains(t, got, "The API area.")
	assert.Contains(t, got, "| [routes.md](routes.md) | Request routing |")
}

func TestApply_EmptyRootIsNoop(t *testing.T) {
	result, err := NewApplier(Options{}).Apply(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result.Changes)
	assert.Empty(t, result.IndexesWritten)
}
