package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillctl/quill/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), ".quill", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func makeReport(id string, started time.Time, fails, warns int, tokens int) *types.HealthReport {
	var issues []types.Issue
	for i := 0; i < fails; i++ {
		issues = append(issues, types.Issue{
			File: "a.md", Message: "m", Severity: types.SeverityFail, Validator: "v",
		})
	}
	for i := 0; i < warns; i++ {
		issues = append(issues, types.Issue{
			File: "a.md", Message: "m", Severity: types.SeverityWarn, Validator: "v",
		})
	}
	return &types.HealthReport{
		RunID:        id,
		StartedAt:    started,
		DurationMS:   42,
		Status:       types.StatusFromIssues(issues),
		FilesChecked: 7,
		Issues:       issues,
		TokenBudget:  types.TokenBudget{TotalEstimatedTokens: tokens, WarningThreshold: 24000},
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, ".quill", "history.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr)
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, makeReport("run-1", base, 3, 1, 900)))
	require.NoError(t, store.Record(ctx, makeReport("run-2", base.Add(time.Minute), 2, 2, 950)))
	require.NoError(t, store.Record(ctx, makeReport("run-3", base.Add(2*time.Minute), 0, 1, 940)))

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)

	newest := runs[0]
	assert.Equal(t, base.Add(2*time.Minute), newest.StartedAt)
	assert.Equal(t, int64(42), newest.DurationMS)
	assert.Equal(t, types.StatusWarn, newest.Status)
	assert.Equal(t, 7, newest.FilesChecked)
	assert.Equal(t, 0, newest.FailCount)
	assert.Equal(t, 1, newest.WarnCount)
	assert.Equal(t, 0, newest.InfoCount)
	assert.Equal(t, 940, newest.EstimatedTokens)
}

func TestRecentEmptyStore(t *testing.T) {
	store := openTestStore(t)
	runs, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecentDefaultLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		report := makeReport(string(rune('a'+i))+"-run", base.Add(time.Duration(i)*time.Second), 0, 0, 100)
		require.NoError(t, store.Record(ctx, report))
	}

	runs, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, defaultRecentLimit)
}

func TestRecordDuplicateRunID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	report := makeReport("dup", time.Now().UTC(), 0, 0, 10)

	require.NoError(t, store.Record(ctx, report))
	assert.Error(t, store.Record(ctx, report))
}

func TestTrendOver(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, makeReport("old", base, 5, 1, 1000)))
	require.NoError(t, store.Record(ctx, makeReport("mid", base.Add(time.Minute), 4, 4, 1200)))
	require.NoError(t, store.Record(ctx, makeReport("new", base.Add(2*time.Minute), 2, 3, 1500)))

	trend, err := store.TrendOver(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, trend.Runs)
	assert.Equal(t, -3, trend.FailDelta)
	assert.Equal(t, 2, trend.WarnDelta)
	assert.Equal(t, 500, trend.TokenDelta)
}

func TestTrendOverEmptyStore(t *testing.T) {
	store := openTestStore(t)
	trend, err := store.TrendOver(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, &Trend{}, trend)
}

func TestTrendOverWindowsNewestRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	// The ancient run falls outside the 2-run window and must not
	// influence the deltas.
	require.NoError(t, store.Record(ctx, makeReport("ancient", base, 50, 50, 9000)))
	require.NoError(t, store.Record(ctx, makeReport("old", base.Add(time.Minute), 3, 0, 100)))
	require.NoError(t, store.Record(ctx, makeReport("new", base.Add(2*time.Minute), 1, 0, 200)))

	trend, err := store.TrendOver(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, trend.Runs)
	assert.Equal(t, -2, trend.FailDelta)
	assert.Equal(t, 100, trend.TokenDelta)
}
