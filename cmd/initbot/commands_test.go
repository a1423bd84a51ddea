package main_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/initbot"
	main "github.com/fwojciec/initbot/cmd/initbot"
	"github.com/fwojciec/initbot/crawl"
	"github.com/fwojciec/initbot/difflib"
	"github.com/fwojciec/initbot/mock"
	"github.com/fwojciec/initbot/summarize"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports progress and totals", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := newDeps(newStore(t))
		deps.Crawler = crawlerFunc(func(_ context.Context, indexURL string, progress crawl.ProgressFunc) (*crawl.Result, error) {
			assert.Equal(t, deps.Config.Source.IndexURL, indexURL)
			progress(crawl.ProgressEvent{Type: crawl.ProgressStarted, Total: 2})
			progress(crawl.ProgressEvent{Type: crawl.ProgressFailed, URL: "https://www.bk.admin.ch/ch/d/pore/vi/vis1.html", Error: errors.New("HTTP 500")})
			return &crawl.Result{Saved: 2, Failed: 1, MissingText: 1, Bytes: 2048}, nil
		})

		err := (&main.FetchCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Found 2 initiatives")
		assert.Contains(t, stdout.String(), "Saved 2 initiatives (2.0 KB of text)")
		assert.Contains(t, stdout.String(), "1 with incomplete pages")
		assert.Contains(t, stderr.String(), "HTTP 500")
	})

	t.Run("summarizes when asked", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newStore(t))
		deps.Crawler = crawlerFunc(func(context.Context, string, crawl.ProgressFunc) (*crawl.Result, error) {
			return &crawl.Result{Saved: 1}, nil
		})
		called := false
		deps.Summaries = runnerFunc(func(context.Context, summarize.ProgressFunc) (*summarize.Result, error) {
			called = true
			return &summarize.Result{Summarized: 1}, nil
		})

		err := (&main.FetchCmd{Summarize: true}).Run(deps)

		require.NoError(t, err)
		assert.True(t, called)
		assert.Contains(t, stdout.String(), "Summarized 1 initiatives")
	})

	t.Run("returns crawl error", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(newStore(t))
		deps.Crawler = crawlerFunc(func(context.Context, string, crawl.ProgressFunc) (*crawl.Result, error) {
			return nil, initbot.Errorf(initbot.ENOTFOUND, "no initiatives found")
		})

		err := (&main.FetchCmd{}).Run(deps)

		assert.Equal(t, initbot.ENOTFOUND, initbot.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: no initiatives found")
	})
}

func TestSummarizeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("applies force and concurrency to the runner", func(t *testing.T) {
		t.Parallel()

		store := newStore(t, &initbot.Initiative{ID: "a", Title: "A", FullText: "Text.", ContentHash: "h", Summary: "old", SummaryHash: "h"})
		runner := &summarize.Runner{
			Initiatives: store,
			Summarizer: &mock.Summarizer{
				SummarizeFn: func(context.Context, *initbot.Initiative) (*initbot.Summary, error) {
					return &initbot.Summary{Text: "new"}, nil
				},
			},
		}
		deps, stdout, _ := newDeps(store)
		deps.Summaries = runner

		err := (&main.SummarizeCmd{Force: true, Concurrency: 3}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 3, runner.Concurrency)
		assert.Contains(t, stdout.String(), "[1/1] a")
		got, err := store.FindInitiativeByID(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Summary)
	})

	t.Run("prints token total", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newStore(t))
		deps.Summaries = runnerFunc(func(context.Context, summarize.ProgressFunc) (*summarize.Result, error) {
			return &summarize.Result{Summarized: 2, Tokens: 1500}, nil
		})

		err := (&main.SummarizeCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Input: ~2k tokens")
	})
}

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("filters by status", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newStore(t, testInitiatives()...))

		err := (&main.ListCmd{Status: "voted"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "vis462")
		assert.NotContains(t, stdout.String(), "vis480")
	})

	t.Run("shows hint when empty", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newStore(t))

		err := (&main.ListCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "initbot fetch")
	})
}

func TestFormatTable(t *testing.T) {
	t.Parallel()

	out := main.FormatTable(testInitiatives())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 3)
	titleCol := strings.Index(lines[0], "TITLE")
	require.Positive(t, titleCol)
	for _, line := range lines[1:] {
		// Titles start in the same terminal column on every row.
		prefix := line[:strings.Index(line, "Für")]
		assert.Equal(t, runewidth.StringWidth(lines[0][:titleCol]), runewidth.StringWidth(prefix))
	}
}

func TestShowCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints formatted initiative", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newStore(t, testInitiatives()...))

		err := (&main.ShowCmd{ID: "vis462"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "## Für verantwortungsvolle Unternehmen")
		assert.Contains(t, stdout.String(), "- **Result:** Rejected")
	})

	t.Run("prints json", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newStore(t, testInitiatives()...))

		err := (&main.ShowCmd{ID: "vis462", JSON: true}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `"id": "vis462"`)
	})
}

func TestStatsCmd_Run(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := newDeps(newStore(t, testInitiatives()...))

	err := (&main.StatsCmd{}).Run(deps)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "There are 2 initiatives in the database.")
}

func TestAskCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("answers from fresh cache without refreshing", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newStore(t, testInitiatives()...))
		deps.Crawler = crawlerFunc(func(context.Context, string, crawl.ProgressFunc) (*crawl.Result, error) {
			t.Error("crawler must not run for a fresh cache")
			return nil, nil
		})
		deps.Chatbot = &mock.Chatbot{
			RespondFn: func(_ context.Context, message string) (*initbot.Reply, error) {
				assert.Equal(t, "what is ahv", message)
				return &initbot.Reply{Text: "AHV answer"}, nil
			},
		}

		err := (&main.AskCmd{Question: []string{"what", "is", "ahv"}}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "AHV answer\n", stdout.String())
	})

	t.Run("refreshes stale cache", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(newStore(t, testInitiatives()...))
		deps.Now = func() time.Time { return time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC) }
		crawled, summarized := false, false
		deps.Crawler = crawlerFunc(func(context.Context, string, crawl.ProgressFunc) (*crawl.Result, error) {
			crawled = true
			return &crawl.Result{}, nil
		})
		deps.Summaries = runnerFunc(func(context.Context, summarize.ProgressFunc) (*summarize.Result, error) {
			summarized = true
			return &summarize.Result{}, nil
		})
		deps.Chatbot = &mock.Chatbot{
			RespondFn: func(context.Context, string) (*initbot.Reply, error) {
				return &initbot.Reply{Text: "ok"}, nil
			},
		}

		err := (&main.AskCmd{Question: []string{"hello"}}).Run(deps)

		require.NoError(t, err)
		assert.True(t, crawled)
		assert.True(t, summarized)
	})

	t.Run("serves fallback data when refresh fails on empty cache", func(t *testing.T) {
		t.Parallel()

		// Story: first run without network. The bot still answers from
		// the built-in records.
		deps, stdout, _ := newDeps(newStore(t))
		deps.Matcher = difflib.NewMatcher()
		deps.Crawler = crawlerFunc(func(context.Context, string, crawl.ProgressFunc) (*crawl.Result, error) {
			return nil, errors.New("dial tcp: no route to host")
		})

		err := (&main.AskCmd{Question: []string{"how", "many", "initiatives", "are", "there"}}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "There are 2 initiatives in the database.")
	})

	t.Run("switches from fallback to stored records once the store fills", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := newStore(t)
		deps, _, _ := newDeps(store)
		deps.Crawler = crawlerFunc(func(context.Context, string, crawl.ProgressFunc) (*crawl.Result, error) {
			return nil, errors.New("dial tcp: no route to host")
		})
		deps.Chatbot = &mock.Chatbot{
			RespondFn: func(context.Context, string) (*initbot.Reply, error) {
				return &initbot.Reply{Text: "ok"}, nil
			},
		}

		require.NoError(t, (&main.AskCmd{Question: []string{"hello"}}).Run(deps))

		served, err := deps.Initiatives.FindInitiatives(ctx, initbot.InitiativeFilter{})
		require.NoError(t, err)
		require.Len(t, served, 2)
		assert.Equal(t, "for-responsible-business", served[0].ID)

		require.NoError(t, store.UpsertInitiatives(ctx, testInitiatives()))

		served, err = deps.Initiatives.FindInitiatives(ctx, initbot.InitiativeFilter{})
		require.NoError(t, err)
		require.Len(t, served, 2)
		assert.Equal(t, "vis462", served[0].ID)

		found, err := deps.Initiatives.FindInitiativeByID(ctx, "vis480")
		require.NoError(t, err)
		assert.Equal(t, "Für eine sichere Ernährung", found.Title)
	})
}

func TestChatCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("answers each line until exit", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newStore(t, testInitiatives()...))
		deps.Config.Cache.AutoRefresh = false
		deps.Stdin = strings.NewReader("hello\n\nwhat is ahv\nexit\nnever read\n")
		var got []string
		deps.Chatbot = &mock.Chatbot{
			RespondFn: func(_ context.Context, message string) (*initbot.Reply, error) {
				got = append(got, message)
				return &initbot.Reply{Text: "reply to " + message}, nil
			},
		}

		err := (&main.ChatCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"hello", "what is ahv"}, got)
		assert.Contains(t, stdout.String(), "reply to what is ahv")
		assert.Contains(t, stdout.String(), "Goodbye!")
	})

	t.Run("ends at end of input", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(newStore(t, testInitiatives()...))
		deps.Config.Cache.AutoRefresh = false
		deps.Stdin = strings.NewReader("   \n")
		deps.Chatbot = &mock.Chatbot{
			RespondFn: func(context.Context, string) (*initbot.Reply, error) {
				return nil, initbot.Errorf(initbot.EINVALID, "message required")
			},
		}

		err := (&main.ChatCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Empty(t, stderr.String())
	})
}

func TestOpinionCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("analyzes reactions from file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "reactions.txt")
		require.NoError(t, os.WriteFile(path, []byte("Gute Idee\n\nZu teuer\n"), 0o644))

		deps, stdout, _ := newDeps(newStore(t, testInitiatives()...))
		deps.Opinions = &mock.OpinionAnalyzer{
			AnalyzeFn: func(_ context.Context, i *initbot.Initiative, reactions []string) (*initbot.Opinion, error) {
				assert.Equal(t, "vis462", i.ID)
				assert.Equal(t, []string{"Gute Idee", "Zu teuer"}, reactions)
				return &initbot.Opinion{InitiativeID: i.ID, Score: 0.1, Label: initbot.OpinionMixed, Highlights: []string{"Kosten"}}, nil
			},
		}

		err := (&main.OpinionCmd{ID: "vis462", File: path}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Opinion: mixed (score +0.10, 2 reactions)")
		assert.Contains(t, stdout.String(), "- Kosten")
	})

	t.Run("reads stdin for dash", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(newStore(t, testInitiatives()...))
		deps.Stdin = strings.NewReader("Super\n")
		deps.Opinions = &mock.OpinionAnalyzer{
			AnalyzeFn: func(_ context.Context, i *initbot.Initiative, reactions []string) (*initbot.Opinion, error) {
				assert.Equal(t, []string{"Super"}, reactions)
				return &initbot.Opinion{Label: initbot.OpinionPositive}, nil
			},
		}

		err := (&main.OpinionCmd{ID: "vis462", File: "-"}).Run(deps)

		require.NoError(t, err)
	})

	t.Run("rejects empty file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		deps, _, _ := newDeps(newStore(t, testInitiatives()...))

		err := (&main.OpinionCmd{ID: "vis462", File: path}).Run(deps)

		assert.Equal(t, initbot.EINVALID, initbot.ErrorCode(err))
	})
}

func TestServeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("listens until the context ends", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		deps, stdout, _ := newDeps(newStore(t, testInitiatives()...))
		deps.Ctx = ctx
		deps.Config.Cache.AutoRefresh = false
		deps.Matcher = difflib.NewMatcher()

		err := (&main.ServeCmd{Addr: "127.0.0.1:0"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Listening on http://127.0.0.1:")
	})

	t.Run("keeps refreshing a stale cache while serving", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		deps, _, _ := newDeps(newStore(t, testInitiatives()...))
		deps.Ctx = ctx
		deps.Matcher = difflib.NewMatcher()
		deps.Now = func() time.Time { return time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC) }
		var crawls atomic.Int32
		deps.Crawler = crawlerFunc(func(context.Context, string, crawl.ProgressFunc) (*crawl.Result, error) {
			crawls.Add(1)
			return &crawl.Result{}, nil
		})

		done := make(chan error, 1)
		go func() {
			done <- (&main.ServeCmd{Addr: "127.0.0.1:0", RefreshEvery: time.Millisecond}).Run(deps)
		}()

		// One refresh at startup, then more from the periodic check.
		require.Eventually(t, func() bool { return crawls.Load() >= 3 }, 5*time.Second, time.Millisecond)
		cancel()
		require.NoError(t, <-done)
	})
}
