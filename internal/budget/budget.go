// Package budget estimates the token footprint of a document corpus.
//
// The estimate is a word-count heuristic, not a tokenizer: roughly four
// tokens per three words of body text, rounded up per document. That
// is accurate enough to answer the only question the health report
// asks (is the corpus close to crowding out its consumer's context
// window) without binding to any particular model's vocabulary.
package budget

import (
	"fmt"
	"path"
	"sort"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

// DefaultThreshold is the corpus-wide token budget used when the
// config does not set one.
const DefaultThreshold = 24000

// EstimateTokens converts a body word count to an estimated token
// count: words × 4/3, rounded up.
func EstimateTokens(words int) int {
	return (words*4 + 2) / 3
}

// Estimate computes the corpus token budget: per-document estimates
// grouped by directory area, ordered largest area first.
func Estimate(docs []*doc.Document, threshold int) types.TokenBudget {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	byArea := make(map[string]*types.AreaBudget)
	total := 0
	for _, d := range docs {
		tokens := EstimateTokens(d.WordCount())
		total += tokens

		area := path.Dir(d.Path)
		ab, ok := byArea[area]
		if !ok {
			ab = &types.AreaBudget{Area: area}
			byArea[area] = ab
		}
		ab.Files++
		ab.EstimatedTokens += tokens
	}

	areas := make([]types.AreaBudget, 0, len(byArea))
	for _, ab := range byArea {
		areas = append(areas, *ab)
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].EstimatedTokens != areas[j].EstimatedTokens {
			return areas[i].EstimatedTokens > areas[j].EstimatedTokens
		}
		return areas[i].Area < areas[j].Area
	})

	return types.TokenBudget{
		TotalEstimatedTokens: total,
		WarningThreshold:     threshold,
		OverBudget:           total > threshold,
		Areas:                areas,
	}
}

// Issue synthesizes the over-budget warning, or nil when the corpus is
// within budget. The aggregator folds the result into its issue list
// so the budget participates in the overall status.
func Issue(b types.TokenBudget) *types.Issue {
	if !b.OverBudget {
		return nil
	}
	return &types.Issue{
		File: ".",
		Message: fmt.Sprintf("estimated corpus size is %d tokens, over the %d-token budget",
			b.TotalEstimatedTokens, b.WarningThreshold),
		Severity:   types.SeverityWarn,
		Validator:  "token-budget",
		Suggestion: "archive or split the largest areas first",
	}
}
