// Package urlcheck probes cited source URLs for reachability.
//
// Checks are independent per URL, so the checker runs them in
// parallel under a concurrency cap and an outbound rate limit. Results
// come back in deduplicated input order regardless of completion
// order; reachability is order-insensitive, stable output is for the
// humans reading it.
package urlcheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/quillctl/quill/internal/doc"
	"github.com/quillctl/quill/internal/types"
)

// Result is one URL's reachability verdict.
type Result struct {
	URL       string `json:"url"`
	Status    int    `json:"status,omitempty"` // 0 when the request never completed
	Reachable bool   `json:"reachable"`
	Reason    string `json:"reason,omitempty"` // failure reason, "" when reachable
}

// Checker probes URLs with HEAD requests, falling back to GET for
// servers that reject HEAD.
type Checker struct {
	// Timeout bounds each individual request.
	Timeout time.Duration

	// Concurrency caps in-flight requests.
	Concurrency int

	// RPS caps outbound request rate across all workers.
	RPS float64

	client *http.Client
}

// New creates a Checker. Non-positive arguments fall back to defaults:
// 10s timeout, 8 concurrent requests, 4 requests per second.
func New(timeout time.Duration, concurrency int, rps float64) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if concurrency < 1 {
		concurrency = 8
	}
	if rps <= 0 {
		rps = 4
	}
	return &Checker{
		Timeout:     timeout,
		Concurrency: concurrency,
		RPS:         rps,
		client:      &http.Client{},
	}
}

// Check probes every unique URL and returns one Result per unique URL,
// in first-seen input order.
func (c *Checker) Check(ctx context.Context, urls []string) []Result {
	unique := dedupe(urls)
	results := make([]Result, len(unique))

	sem := semaphore.NewWeighted(int64(c.Concurrency))
	limiter := rate.NewLimiter(rate.Limit(c.RPS), 1)

	var wg sync.WaitGroup
	for i, u := range unique {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{URL: u, Reason: err.Error()}
			continue
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer sem.Release(1)
			if err := limiter.Wait(ctx); err != nil {
				results[i] = Result{URL: u, Reason: err.Error()}
				return
			}
			results[i] = c.checkOne(ctx, u)
		}(i, u)
	}
	wg.Wait()

	return results
}

// checkOne probes a single URL. HEAD first; servers that reject HEAD
// outright (405/403) or at the transport level get a GET retry.
func (c *Checker) checkOne(ctx context.Context, url string) Result {
	status, err := c.probe(ctx, http.MethodHead, url)
	if err != nil || status == http.StatusMethodNotAllowed || status == http.StatusForbidden {
		status, err = c.probe(ctx, http.MethodGet, url)
	}

	if err != nil {
		return Result{URL: url, Reason: err.Error()}
	}
	if status >= 200 && status < 400 {
		return Result{URL: url, Status: status, Reachable: true}
	}
	return Result{URL: url, Status: status, Reason: fmt.Sprintf("HTTP %d", status)}
}

func (c *Checker) probe(ctx context.Context, method, url string) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Collect gathers every checkable source URL cited by the documents,
// deduplicated, in first-seen order.
func Collect(docs []*doc.Document) []string {
	var urls []string
	for _, d := range docs {
		for _, s := range d.Sources {
			if strings.HasPrefix(s.URL, "http://") || strings.HasPrefix(s.URL, "https://") {
				urls = append(urls, s.URL)
			}
		}
	}
	return dedupe(urls)
}

// Issues converts unreachable results into warn issues, one per source
// entry that cites a dead URL. A URL shared by several documents is
// flagged in each of them.
func Issues(docs []*doc.Document, results []Result) []types.Issue {
	unreachable := make(map[string]Result)
	for _, r := range results {
		if !r.Reachable {
			unreachable[r.URL] = r
		}
	}
	if len(unreachable) == 0 {
		return nil
	}

	var issues []types.Issue
	for _, d := range docs {
		for _, s := range d.Sources {
			r, ok := unreachable[s.URL]
			if !ok {
				continue
			}
			issues = append(issues, types.Issue{
				File:       d.Path,
				Message:    fmt.Sprintf("source URL %s is unreachable (%s)", r.URL, r.Reason),
				Severity:   types.SeverityWarn,
				Validator:  "url-check",
				Suggestion: "update or remove the dead link",
			})
		}
	}
	return issues
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
