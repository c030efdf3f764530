// Package health runs structural and cross-document validation over a
// parsed corpus and aggregates the findings into a single report.
//
// Validators are pure rules: each one takes a Document (or the whole
// corpus) and returns zero or more Issues. They never touch the
// filesystem, never fail on a well-formed Document, and never re-judge
// anything a parser error already covers — the Runner converts parse
// failures into file-level fail issues so one broken file cannot abort
// a batch run.
//
// There is no ambient registry. The Runner is constructed with an
// explicit ordered list of validators and hands every parsed document
// to each of them in turn:
//
//	runner := health.NewRunner(health.Options{WordLimit: 800})
//	report, err := runner.Run(ctx, projectRoot)
//
// The report folds in non-validator inputs too: per-directory index
// drift from the index synchronizer, the optional URL reachability
// probe, and the corpus token-budget estimate. All arrive as ordinary
// Issues so they participate in the overall status the same way rule
// findings do.
package health
