package types

import "testing"

func TestSeverityOrdinal(t *testing.T) {
	if SeverityFail.Ordinal() >= SeverityWarn.Ordinal() {
		t.Errorf("fail should sort before warn: %d vs %d", SeverityFail.Ordinal(), SeverityWarn.Ordinal())
	}
	if SeverityWarn.Ordinal() >= SeverityInfo.Ordinal() {
		t.Errorf("warn should sort before info: %d vs %d", SeverityWarn.Ordinal(), SeverityInfo.Ordinal())
	}
	if Severity("bogus").Ordinal() <= SeverityInfo.Ordinal() {
		t.Errorf("unknown severities must rank after known ones")
	}
}

func TestIssueValidate(t *testing.T) {
	valid := Issue{
		File:      "context/api/auth.md",
		Message:   "missing description",
		Severity:  SeverityFail,
		Validator: "required-fields",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid issue failed validation: %v", err)
	}

	cases := []struct {
		name  string
		issue Issue
	}{
		{"missing file", Issue{Message: "m", Severity: SeverityWarn, Validator: "v"}},
		{"missing message", Issue{File: "f", Severity: SeverityWarn, Validator: "v"}},
		{"bad severity", Issue{File: "f", Message: "m", Severity: "serious", Validator: "v"}},
		{"missing validator", Issue{File: "f", Message: "m", Severity: SeverityWarn}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.issue.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestIssueEqualityByValue(t *testing.T) {
	a := Issue{File: "f.md", Message: "m", Severity: SeverityWarn, Validator: "v"}
	b := Issue{File: "f.md", Message: "m", Severity: SeverityWarn, Validator: "v"}
	if a != b {
		t.Errorf("issues with identical fields should compare equal")
	}
	b.Suggestion = "add a description"
	if a == b {
		t.Errorf("issues with differing fields should not compare equal")
	}
}

func TestStatusFromIssues(t *testing.T) {
	fail := Issue{File: "a.md", Message: "m", Severity: SeverityFail, Validator: "v"}
	warn := Issue{File: "b.md", Message: "m", Severity: SeverityWarn, Validator: "v"}
	info := Issue{File: "c.md", Message: "m", Severity: SeverityInfo, Validator: "v"}

	cases := []struct {
		name   string
		issues []Issue
		want   Status
	}{
		{"no issues", nil, StatusPass},
		{"info only", []Issue{info}, StatusPass},
		{"warn only", []Issue{warn}, StatusWarn},
		{"warn and info", []Issue{info, warn}, StatusWarn},
		{"fail beats warn", []Issue{warn, fail}, StatusFail},
		{"fail alone", []Issue{fail}, StatusFail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusFromIssues(tc.issues); got != tc.want {
				t.Errorf("StatusFromIssues() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSortIssues(t *testing.T) {
	issues := []Issue{
		{File: "b.md", Message: "m", Severity: SeverityInfo, Validator: "v"},
		{File: "b.md", Message: "m", Severity: SeverityFail, Validator: "z"},
		{File: "a.md", Message: "m", Severity: SeverityWarn, Validator: "v"},
		{File: "b.md", Message: "m", Severity: SeverityFail, Validator: "a"},
		{File: "a.md", Message: "m", Severity: SeverityFail, Validator: "v"},
	}
	SortIssues(issues)

	// Fails first, ordered by file then validator; then the warn; info last.
	wantOrder := []struct {
		file      string
		severity  Severity
		validator string
	}{
		{"a.md", SeverityFail, "v"},
		{"b.md", SeverityFail, "a"},
		{"b.md", SeverityFail, "z"},
		{"a.md", SeverityWarn, "v"},
		{"b.md", SeverityInfo, "v"},
	}
	for i, want := range wantOrder {
		got := issues[i]
		if got.File != want.file || got.Severity != want.severity || got.Validator != want.validator {
			t.Errorf("position %d: got {%s %s %s}, want {%s %s %s}",
				i, got.File, got.Severity, got.Validator, want.file, want.severity, want.validator)
		}
	}
}

func TestCountBySeverity(t *testing.T) {
	report := HealthReport{
		Issues: []Issue{
			{File: "a.md", Message: "m", Severity: SeverityFail, Validator: "v"},
			{File: "b.md", Message: "m", Severity: SeverityWarn, Validator: "v"},
			{File: "c.md", Message: "m", Severity: SeverityWarn, Validator: "v"},
			{File: "d.md", Message: "m", Severity: SeverityInfo, Validator: "v"},
		},
	}
	fails, warns, infos := report.CountBySeverity()
	if fails != 1 || warns != 2 || infos != 1 {
		t.Errorf("CountBySeverity() = %d/%d/%d, want 1/2/1", fails, warns, infos)
	}
}
