package types

import (
	"fmt"
	"sort"
	"time"
)

// Severity classifies how serious a validation finding is.
// Ordering is fixed: fail sorts before warn, warn before info.
type Severity string

const (
	SeverityFail Severity = "fail"
	SeverityWarn Severity = "warn"
	SeverityInfo Severity = "info"
)

// IsValid checks if the severity value is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityFail, SeverityWarn, SeverityInfo:
		return true
	}
	return false
}

// Ordinal returns the sort rank of the severity: fail(0) < warn(1) < info(2).
// Unknown severities rank after all known ones.
func (s Severity) Ordinal() int {
	switch s {
	case SeverityFail:
		return 0
	case SeverityWarn:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// Issue is one validation finding. Issues are immutable value objects;
// two issues are equal when all their fields are equal.
type Issue struct {
	File           string   `json:"file"`
	Message        string   `json:"issue"`
	Severity       Severity `json:"severity"`
	Validator      string   `json:"validator"`
	Section        string   `json:"section,omitempty"`
	Suggestion     string   `json:"suggestion,omitempty"`
	RequiresReview bool     `json:"requires_review,omitempty"`
}

// Validate checks if the issue has valid field values
func (i *Issue) Validate() error {
	if i.File == "" {
		return fmt.Errorf("file is required")
	}
	if i.Message == "" {
		return fmt.Errorf("issue message is required")
	}
	if !i.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", i.Severity)
	}
	if i.Validator == "" {
		return fmt.Errorf("validator name is required")
	}
	return nil
}

// SortIssues orders issues by severity ordinal, then file, then validator.
// The sort is stable so issues from one validator keep their emission order.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		ia, ib := issues[a], issues[b]
		if ia.Severity.Ordinal() != ib.Severity.Ordinal() {
			return ia.Severity.Ordinal() < ib.Severity.Ordinal()
		}
		if ia.File != ib.File {
			return ia.File < ib.File
		}
		return ia.Validator < ib.Validator
	})
}

// Status is the overall verdict of a health run
type Status string

const (
	// StatusPass means no fail or warn issues were found. Info-level
	// findings do not degrade the status.
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
	// StatusNone means the run found no documents to check at all.
	StatusNone Status = "none"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPass, StatusWarn, StatusFail, StatusNone:
		return true
	}
	return false
}

// StatusFromIssues derives the overall status from a merged issue list:
// fail if any fail issue exists, warn if any warn issue exists and no
// fail does, pass otherwise.
func StatusFromIssues(issues []Issue) Status {
	status := StatusPass
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityFail:
			return StatusFail
		case SeverityWarn:
			status = StatusWarn
		}
	}
	return status
}

// AreaBudget is the token estimate for one context area.
type AreaBudget struct {
	Area            string `json:"area"`
	Files           int    `json:"files"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

// TokenBudget summarizes the estimated token footprint of the corpus
// against the configured warning threshold.
type TokenBudget struct {
	TotalEstimatedTokens int          `json:"total_estimated_tokens"`
	WarningThreshold     int          `json:"warning_threshold"`
	OverBudget           bool         `json:"over_budget"`
	Areas                []AreaBudget `json:"areas"`
}

// HealthReport aggregates one full validation run over a project tree.
// It is constructed once by the aggregator and never mutated afterwards;
// rendering methods only read it.
type HealthReport struct {
	RunID        string      `json:"run_id"`
	StartedAt    time.Time   `json:"started_at"`
	DurationMS   int64       `json:"duration_ms"`
	Status       Status      `json:"status"`
	FilesChecked int         `json:"files_checked"`
	Issues       []Issue     `json:"issues"`
	TokenBudget  TokenBudget `json:"token_budget"`
}

// CountBySeverity returns how many issues of each severity the report holds.
func (r *HealthReport) CountBySeverity() (fails, warns, infos int) {
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityFail:
			fails++
		case SeverityWarn:
			warns++
		case SeverityInfo:
			infos++
		}
	}
	return fails, warns, infos
}
