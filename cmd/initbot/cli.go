package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/initbot"
	"github.com/fwojciec/initbot/chat"
	"github.com/fwojciec/initbot/config"
	"github.com/fwojciec/initbot/crawl"
	"github.com/fwojciec/initbot/fs"
	initslog "github.com/fwojciec/initbot/slog"
	"github.com/fwojciec/initbot/summarize"
)

// Crawler refreshes the store from the federal chancellery's website.
type Crawler interface {
	Crawl(ctx context.Context, indexURL string, progress crawl.ProgressFunc) (*crawl.Result, error)
}

// SummaryRunner summarizes the stored initiatives.
type SummaryRunner interface {
	Run(ctx context.Context, progress summarize.ProgressFunc) (*summarize.Result, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	Config *config.Config
	Logger *slog.Logger

	Initiatives initbot.InitiativeService
	Matcher     initbot.Matcher
	Crawler     Crawler
	Summaries   SummaryRunner
	Opinions    initbot.OpinionAnalyzer

	// Chatbot overrides the chatbot built from Initiatives and Matcher.
	Chatbot initbot.Chatbot

	Now func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"C" type:"path" help:"Path to the YAML config file (default initbot.yaml if present)"`

	Fetch     FetchCmd     `cmd:"" help:"Scrape initiatives from bk.admin.ch into the cache"`
	Summarize SummarizeCmd `cmd:"" help:"Summarize cached initiatives"`
	List      ListCmd      `cmd:"" help:"List cached initiatives"`
	Show      ShowCmd      `cmd:"" help:"Show one initiative"`
	Stats     StatsCmd     `cmd:"" help:"Show statistics about the cached initiatives"`
	Ask       AskCmd       `cmd:"" help:"Ask the chatbot a single question"`
	Chat      ChatCmd      `cmd:"" help:"Chat with the bot on the terminal"`
	Opinion   OpinionCmd   `cmd:"" help:"Analyze public reactions to an initiative"`
	Serve     ServeCmd     `cmd:"" help:"Serve the JSON API"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	Summarize   bool `short:"s" help:"Summarize new and changed initiatives after fetching"`
	Concurrency int  `short:"c" help:"Concurrent page fetches (default from config)"`
}

// SummarizeCmd is the "summarize" subcommand.
type SummarizeCmd struct {
	Force       bool `short:"f" help:"Re-summarize initiatives whose summary is up to date"`
	Concurrency int  `short:"c" help:"Concurrent summary requests (default from config)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Status string `help:"Filter by status (substring)"`
	Year   string `help:"Filter by submission year"`
	Title  string `help:"Filter by title (substring)"`
	Limit  int    `short:"n" help:"Maximum number of initiatives"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID   string `arg:"" help:"Initiative ID"`
	JSON bool   `help:"Print the stored record as JSON"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question []string `arg:"" help:"Question to ask"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct{}

// OpinionCmd is the "opinion" subcommand.
type OpinionCmd struct {
	ID   string `arg:"" help:"Initiative ID"`
	File string `arg:"" help:"File with one reaction per line, or - for stdin"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr         string        `help:"Address to listen on (default from config)"`
	RefreshEvery time.Duration `default:"10m" help:"How often to check the cache age while serving"`
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (d *Dependencies) fail(err error) error {
	fmt.Fprintf(d.Stderr, "error: %s\n", initbot.ErrorMessage(err))
	return err
}

// prepare refreshes a stale or empty store when auto refresh is on. While
// the store is empty, the fallback initiatives are served from memory.
func (d *Dependencies) prepare() error {
	ctx := d.Ctx

	if err := d.refreshIfStale(); err != nil {
		return err
	}

	existing, err := d.Initiatives.FindInitiatives(ctx, initbot.InitiativeFilter{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		fallback := fs.NewCache("")
		if err := fallback.UpsertInitiatives(ctx, initbot.FallbackInitiatives()); err != nil {
			return err
		}
		d.logger().Warn("no cached initiatives, serving fallback data")
		d.Initiatives = &fallbackService{InitiativeService: d.Initiatives, fallback: fallback}
	}
	return nil
}

// refreshIfStale refreshes the store when auto refresh is on and the
// newest record is older than the cache TTL.
func (d *Dependencies) refreshIfStale() error {
	if d.Config == nil || !d.Config.Cache.AutoRefresh || d.Crawler == nil {
		return nil
	}
	last, err := d.Initiatives.LastFetched(d.Ctx)
	if err != nil {
		return err
	}
	if d.Config.Cache.Stale(last, d.now()) {
		d.refresh()
	}
	return nil
}

// keepFresh checks the cache age every interval until the context ends.
func (d *Dependencies) keepFresh(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.Ctx.Done():
			return
		case <-ticker.C:
			if err := d.refreshIfStale(); err != nil {
				d.logger().Warn("cache age check failed", "err", err)
			}
		}
	}
}

// refresh crawls and summarizes. Failures are logged and the cached data
// is used as it is.
func (d *Dependencies) refresh() {
	fmt.Fprintln(d.Stderr, "Refreshing initiatives from bk.admin.ch...")
	if _, err := d.Crawler.Crawl(d.Ctx, d.Config.Source.IndexURL, nil); err != nil {
		d.logger().Warn("refresh failed, using cached data", "err", err)
		return
	}
	if d.Summaries != nil {
		if _, err := d.Summaries.Run(d.Ctx, nil); err != nil {
			d.logger().Warn("summarize failed", "err", err)
		}
	}
}

// chatbot returns the configured chatbot over the current store.
func (d *Dependencies) chatbot() initbot.Chatbot {
	if d.Chatbot != nil {
		return d.Chatbot
	}
	bot := chat.NewBot(d.Initiatives, d.Matcher)
	if d.Config != nil {
		bot.MinScore = d.Config.Chat.MinScore
		bot.DetailScore = d.Config.Chat.DetailScore
		bot.Limit = d.Config.Chat.Limit
	}
	return initslog.NewLoggingChatbot(bot, d.logger())
}

// fallbackService reads from the fallback records while the store is empty.
// Writes and LastFetched always go to the store.
type fallbackService struct {
	initbot.InitiativeService
	fallback initbot.InitiativeService
}

func (s *fallbackService) source(ctx context.Context) (initbot.InitiativeService, error) {
	found, err := s.InitiativeService.FindInitiatives(ctx, initbot.InitiativeFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return s.fallback, nil
	}
	return s.InitiativeService, nil
}

func (s *fallbackService) FindInitiativeByID(ctx context.Context, id string) (*initbot.Initiative, error) {
	src, err := s.source(ctx)
	if err != nil {
		return nil, err
	}
	return src.FindInitiativeByID(ctx, id)
}

func (s *fallbackService) FindInitiatives(ctx context.Context, filter initbot.InitiativeFilter) ([]*initbot.Initiative, error) {
	src, err := s.source(ctx)
	if err != nil {
		return nil, err
	}
	return src.FindInitiatives(ctx, filter)
}
