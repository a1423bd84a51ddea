// Package summarize generates summaries for cached initiatives.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/initbot"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of summaries requested at once.
const DefaultConcurrency = 2

// Runner summarizes every initiative that needs it and stores the results.
type Runner struct {
	Initiatives initbot.InitiativeService
	Summarizer  initbot.Summarizer

	// TokenCounter, if set, totals the input tokens sent to the Summarizer.
	TokenCounter initbot.TokenCounter

	// Force re-summarizes records whose summary is up to date.
	Force bool

	Concurrency int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of a run.
type Result struct {
	Summarized int
	Skipped    int
	// NoText is the number of records skipped because they have no full text.
	NoText int
	Failed int
	Tokens int
	// Errors maps initiative IDs to the error that stopped them.
	Errors map[string]error
}

// ProgressFunc receives the number of finished records and the total after
// each record.
type ProgressFunc func(completed, total int, initiative *initbot.Initiative, err error)

// Run summarizes the cached initiatives. A failed record is counted and
// does not stop the others.
func (r *Runner) Run(ctx context.Context, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(int, int, *initbot.Initiative, error) {}
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	all, err := r.Initiatives.FindInitiatives(ctx, initbot.InitiativeFilter{})
	if err != nil {
		return nil, fmt.Errorf("load initiatives: %w", err)
	}

	result := &Result{Errors: make(map[string]error)}
	var todo []*initbot.Initiative
	for _, i := range all {
		switch {
		case strings.TrimSpace(i.FullText) == "":
			result.NoText++
		case !r.Force && !i.NeedsSummary():
			result.Skipped++
		default:
			todo = append(todo, i)
		}
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu        sync.Mutex
		completed atomic.Int64
		tokens    atomic.Int64
	)
	total := len(todo)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, i := range todo {
		g.Go(func() error {
			n, err := r.summarize(gctx, i, now)
			tokens.Add(int64(n))

			mu.Lock()
			if err != nil {
				result.Failed++
				result.Errors[i.ID] = err
			} else {
				result.Summarized++
			}
			mu.Unlock()

			progress(int(completed.Add(1)), total, i, err)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Tokens = int(tokens.Load())
	return result, nil
}

// summarize generates and stores the summary of one record. Returns the
// number of input tokens counted.
func (r *Runner) summarize(ctx context.Context, i *initbot.Initiative, now func() time.Time) (int, error) {
	var tokens int
	if r.TokenCounter != nil {
		if n, err := r.TokenCounter.CountTokens(ctx, i.FullText); err == nil {
			tokens = n
		}
	}

	summary, err := r.Summarizer.Summarize(ctx, i)
	if err != nil {
		return tokens, err
	}

	summarizedAt := now().UTC()
	_, err = r.Initiatives.UpdateInitiative(ctx, i.ID, initbot.InitiativeUpdate{
		Summary:      &summary.Text,
		Keywords:     &summary.Keywords,
		SummaryHash:  &i.ContentHash,
		SummarizedAt: &summarizedAt,
	})
	if err != nil {
		return tokens, fmt.Errorf("save summary: %w", err)
	}
	return tokens, nil
}
