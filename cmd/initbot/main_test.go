package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/initbot"
	main "github.com/fwojciec/initbot/cmd/initbot"
	"github.com/fwojciec/initbot/config"
	"github.com/fwojciec/initbot/crawl"
	"github.com/fwojciec/initbot/fs"
	"github.com/fwojciec/initbot/summarize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commands = []string{"fetch", "summarize", "list", "show", "stats", "ask", "chat", "opinion", "serve"}

// crawlerFunc adapts a function to the Crawler interface.
type crawlerFunc func(ctx context.Context, indexURL string, progress crawl.ProgressFunc) (*crawl.Result, error)

func (f crawlerFunc) Crawl(ctx context.Context, indexURL string, progress crawl.ProgressFunc) (*crawl.Result, error) {
	return f(ctx, indexURL, progress)
}

// runnerFunc adapts a function to the SummaryRunner interface.
type runnerFunc func(ctx context.Context, progress summarize.ProgressFunc) (*summarize.Result, error)

func (f runnerFunc) Run(ctx context.Context, progress summarize.ProgressFunc) (*summarize.Result, error) {
	return f(ctx, progress)
}

func testInitiatives() []*initbot.Initiative {
	return []*initbot.Initiative{
		{
			ID:          "vis462",
			Position:    0,
			Title:       "Für verantwortungsvolle Unternehmen",
			Status:      initbot.StatusVoted,
			Result:      "Rejected",
			SubmittedOn: "10.10.2016",
			Summary:     "Companies must respect human rights.",
			FetchedAt:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          "vis480",
			Position:    1,
			Title:       "Für eine sichere Ernährung",
			Status:      initbot.StatusSubmitted,
			SubmittedOn: "08.07.2014",
			FetchedAt:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

// newStore returns an in-memory cache holding initiatives.
func newStore(t *testing.T, initiatives ...*initbot.Initiative) *fs.Cache {
	t.Helper()

	cache := fs.NewCache("")
	require.NoError(t, cache.UpsertInitiatives(context.Background(), initiatives))
	return cache
}

func newDeps(store initbot.InitiativeService) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:         context.Background(),
		Stdout:      stdout,
		Stderr:      stderr,
		Stdin:       strings.NewReader(""),
		Config:      config.Default(),
		Initiatives: store,
		Now:         func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) },
	}, stdout, stderr
}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range commands {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help shows kong output", func(t *testing.T) {
		t.Parallel()

		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Usage:")
		for _, cmd := range commands {
			assert.Contains(t, stdout.String(), cmd)
		}
	})

	t.Run("no args returns error", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("lists initiatives from json cache file", func(t *testing.T) {
		t.Parallel()

		// Given a cache file written by an earlier fetch
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "initiatives.json")
		cache := fs.NewCache(cachePath)
		require.NoError(t, cache.UpsertInitiatives(context.Background(), testInitiatives()))
		require.NoError(t, cache.Close())

		cfgPath := filepath.Join(dir, "initbot.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  driver: json\n  path: "+cachePath+"\n"), 0o644))

		m := main.NewMain()
		m.DotEnvPath = ""
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

		// When listing
		err := m.Run(context.Background(), []string{"--config", cfgPath, "list"}, stdout, stderr)

		// Then every record is shown
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "vis462")
		assert.Contains(t, stdout.String(), "Für eine sichere Ernährung")
	})

	t.Run("shows initiative from sqlite store", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbPath := filepath.Join(dir, "initbot.db")
		cfgPath := filepath.Join(dir, "initbot.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  driver: sqlite\n  path: "+dbPath+"\n"), 0o644))

		m := main.NewMain()
		m.DotEnvPath = ""
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--config", cfgPath, "show", "missing"}, stdout, stderr)

		require.Error(t, err)
		assert.Equal(t, initbot.ENOTFOUND, initbot.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: initiative not found")
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		t.Parallel()

		cfgPath := filepath.Join(t.TempDir(), "initbot.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  driver: mongo\n"), 0o644))

		m := main.NewMain()
		m.DotEnvPath = ""

		err := m.Run(context.Background(), []string{"--config", cfgPath, "stats"}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.ErrorIs(t, err, config.ErrInvalidDriver)
	})
}
