// Package history persists health run summaries to a local SQLite
// database so document health is visible as a trend, not just a
// point-in-time report. Only the per-run rollup is stored; individual
// issues stay in the report.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver" // database/sql driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embedded sqlite

	"github.com/quillctl/quill/internal/types"
)

// DefaultPath is the store location relative to the project root.
const DefaultPath = ".quill/history.db"

// defaultRecentLimit bounds Recent when the caller passes n <= 0.
const defaultRecentLimit = 10

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	started_at       TEXT NOT NULL,
	duration_ms      INTEGER NOT NULL,
	status           TEXT NOT NULL,
	files_checked    INTEGER NOT NULL,
	fail_count       INTEGER NOT NULL,
	warn_count       INTEGER NOT NULL,
	info_count       INTEGER NOT NULL,
	estimated_tokens INTEGER NOT NULL
);
`

// Run is one recorded health run summary.
type Run struct {
	ID              string       `json:"id"`
	StartedAt       time.Time    `json:"started_at"`
	DurationMS      int64        `json:"duration_ms"`
	Status          types.Status `json:"status"`
	FilesChecked    int          `json:"files_checked"`
	FailCount       int          `json:"fail_count"`
	WarnCount       int          `json:"warn_count"`
	InfoCount       int          `json:"info_count"`
	EstimatedTokens int          `json:"estimated_tokens"`
}

// Trend compares the newest and oldest of a window of runs. Negative
// deltas mean the corpus got healthier.
type Trend struct {
	Runs       int `json:"runs"`
	FailDelta  int `json:"fail_delta"`
	WarnDelta  int `json:"warn_delta"`
	TokenDelta int `json:"token_delta"`
}

// Store wraps the runs database.
type Store struct {
	db *sql.DB
}

// Open opens the history database at path, creating the file and its
// directory on first use.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one report summary. Recording the same run ID twice
// is an error.
func (s *Store) Record(ctx context.Context, report *types.HealthReport) error {
	fails, warns, infos := report.CountBySeverity()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, status, files_checked,
		                  fail_count, warn_count, info_count, estimated_tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.DurationMS,
		string(report.Status),
		report.FilesChecked,
		fails, warns, infos,
		report.TokenBudget.TotalEstimatedTokens,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", report.RunID, err)
	}
	return nil
}

// Recent returns the latest n runs, newest first. Recording order
// decides recency, so two runs started in the same second still come
// back in the order they happened.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = defaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, status, files_checked,
		       fail_count, warn_count, info_count, estimated_tokens
		FROM runs
		ORDER BY rowid DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			started string
			status  string
		)
		if err := rows.Scan(&r.ID, &started, &r.DurationMS, &status, &r.FilesChecked,
			&r.FailCount, &r.WarnCount, &r.InfoCount, &r.EstimatedTokens); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at %q: %w", started, err)
		}
		r.StartedAt = t
		r.Status = types.Status(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading run rows: %w", err)
	}
	return out, nil
}

// TrendOver summarizes how issue counts moved across the last n runs.
func (s *Store) TrendOver(ctx context.Context, n int) (*Trend, error) {
	runs, err := s.Recent(ctx, n)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return &Trend{}, nil
	}

	newest, oldest := runs[0], runs[len(runs)-1]
	return &Trend{
		Runs:       len(runs),
		FailDelta:  newest.FailCount - oldest.FailCount,
		WarnDelta:  newest.WarnCount - oldest.WarnCount,
		TokenDelta: newest.EstimatedTokens - oldest.EstimatedTokens,
	}, nil
}
