package summarize_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/initbot"
	"github.com/fwojciec/initbot/fs"
	"github.com/fwojciec/initbot/mock"
	"github.com/fwojciec/initbot/summarize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCache(t *testing.T, initiatives ...*initbot.Initiative) *fs.Cache {
	t.Helper()

	cache := fs.NewCache("")
	require.NoError(t, cache.Open())
	require.NoError(t, cache.UpsertInitiatives(context.Background(), initiatives))
	return cache
}

func echoSummarizer() *mock.Summarizer {
	return &mock.Summarizer{
		SummarizeFn: func(_ context.Context, i *initbot.Initiative) (*initbot.Summary, error) {
			return &initbot.Summary{Text: "Summary of " + i.Title, Keywords: []string{"k"}}, nil
		},
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("summarizes records that need it and skips the rest", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t,
			&initbot.Initiative{ID: "new", Title: "New", FullText: "text", ContentHash: "h1"},
			&initbot.Initiative{ID: "fresh", Title: "Fresh", FullText: "text", ContentHash: "h2", Summary: "done", SummaryHash: "h2"},
			&initbot.Initiative{ID: "stale", Title: "Stale", FullText: "changed", ContentHash: "h3", Summary: "old", SummaryHash: "h0"},
			&initbot.Initiative{ID: "empty", Title: "Empty"},
		)
		runner := &summarize.Runner{
			Initiatives: cache,
			Summarizer:  echoSummarizer(),
			Now:         func() time.Time { return fixedNow },
		}

		result, err := runner.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Summarized)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 1, result.NoText)
		assert.Equal(t, 0, result.Failed)

		stale, err := cache.FindInitiativeByID(context.Background(), "stale")
		require.NoError(t, err)
		assert.Equal(t, "Summary of Stale", stale.Summary)
		assert.Equal(t, "h3", stale.SummaryHash)
		assert.Equal(t, fixedNow, stale.SummarizedAt)
		assert.False(t, stale.NeedsSummary())

		fresh, err := cache.FindInitiativeByID(context.Background(), "fresh")
		require.NoError(t, err)
		assert.Equal(t, "done", fresh.Summary)
	})

	t.Run("force overwrites existing summaries without adding records", func(t *testing.T) {
		t.Parallel()

		// Story: re-running with --force replaces the summary in place.
		cache := newCache(t,
			&initbot.Initiative{ID: "a", Title: "A", FullText: "text", ContentHash: "h", Summary: "old", SummaryHash: "h"},
		)
		runner := &summarize.Runner{Initiatives: cache, Summarizer: echoSummarizer(), Force: true}

		result, err := runner.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Summarized)
		all, err := cache.FindInitiatives(context.Background(), initbot.InitiativeFilter{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Summary of A", all[0].Summary)
	})

	t.Run("counts failures and continues", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t,
			&initbot.Initiative{ID: "bad", Title: "Bad", FullText: "text"},
			&initbot.Initiative{ID: "good", Title: "Good", FullText: "text"},
		)
		summarizer := &mock.Summarizer{
			SummarizeFn: func(_ context.Context, i *initbot.Initiative) (*initbot.Summary, error) {
				if i.ID == "bad" {
					return nil, errors.New("quota exceeded")
				}
				return &initbot.Summary{Text: "ok"}, nil
			},
		}
		runner := &summarize.Runner{Initiatives: cache, Summarizer: summarizer}

		result, err := runner.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Summarized)
		assert.Equal(t, 1, result.Failed)
		assert.EqualError(t, result.Errors["bad"], "quota exceeded")

		good, err := cache.FindInitiativeByID(context.Background(), "good")
		require.NoError(t, err)
		assert.Equal(t, "ok", good.Summary)
	})

	t.Run("totals input tokens", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t,
			&initbot.Initiative{ID: "a", Title: "A", FullText: "one two"},
			&initbot.Initiative{ID: "b", Title: "B", FullText: "three"},
		)
		counter := &mock.TokenCounter{
			CountTokensFn: func(_ context.Context, text string) (int, error) {
				return len(text), nil
			},
		}
		runner := &summarize.Runner{Initiatives: cache, Summarizer: echoSummarizer(), TokenCounter: counter}

		result, err := runner.Run(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, len("one two")+len("three"), result.Tokens)
	})

	t.Run("reports progress for every summarized record", func(t *testing.T) {
		t.Parallel()

		cache := newCache(t,
			&initbot.Initiative{ID: "a", Title: "A", FullText: "x"},
			&initbot.Initiative{ID: "b", Title: "B", FullText: "y"},
		)
		var (
			mu   sync.Mutex
			seen []string
		)
		runner := &summarize.Runner{Initiatives: cache, Summarizer: echoSummarizer(), Concurrency: 1}

		_, err := runner.Run(context.Background(), func(completed, total int, i *initbot.Initiative, err error) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 2, total)
			assert.NoError(t, err)
			seen = append(seen, i.ID)
		})

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, seen)
	})

	t.Run("returns load error", func(t *testing.T) {
		t.Parallel()

		svc := &mock.InitiativeService{
			FindInitiativesFn: func(context.Context, initbot.InitiativeFilter) ([]*initbot.Initiative, error) {
				return nil, errors.New("locked")
			},
		}
		runner := &summarize.Runner{Initiatives: svc, Summarizer: echoSummarizer()}

		_, err := runner.Run(context.Background(), nil)

		assert.EqualError(t, err, "load initiatives: locked")
	})
}
