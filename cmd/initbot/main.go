package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/initbot"
	"github.com/fwojciec/initbot/config"
	"github.com/fwojciec/initbot/crawl"
	"github.com/fwojciec/initbot/difflib"
	"github.com/fwojciec/initbot/fs"
	"github.com/fwojciec/initbot/gemini"
	"github.com/fwojciec/initbot/goquery"
	"github.com/fwojciec/initbot/htmltomarkdown"
	inithttp "github.com/fwojciec/initbot/http"
	"github.com/fwojciec/initbot/lexical"
	"github.com/fwojciec/initbot/readability"
	"github.com/fwojciec/initbot/rod"
	initslog "github.com/fwojciec/initbot/slog"
	"github.com/fwojciec/initbot/sqlite"
	"github.com/fwojciec/initbot/summarize"
	"github.com/fwojciec/initbot/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// DefaultConfigPath is read when no --config is given and the file exists.
const DefaultConfigPath = "initbot.yaml"

// Main represents the program.
type Main struct {
	// Stdin is read by the chat command. Defaults to os.Stdin.
	Stdin io.Reader

	// DotEnvPath is the .env file consulted for environment variables.
	DotEnvPath string

	Config *config.Config

	// Stores; only the configured one is opened.
	DB    *sqlite.DB
	Cache *fs.Cache

	fetcher initbot.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Stdin:      os.Stdin,
		DotEnvPath: ".env",
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	if m.fetcher != nil {
		errs = append(errs, m.fetcher.Close())
	}
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	if m.Cache != nil {
		errs = append(errs, m.Cache.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  m.Stdin,
		Now:    time.Now,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("initbot"),
		kong.Description("Answer questions about Swiss federal popular initiatives."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'initbot --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = strings.Fields(kongCtx.Command())[0]

	env, err := config.NewEnv(m.DotEnvPath)
	if err != nil {
		return err
	}
	configPath := cli.Config
	if configPath == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			configPath = DefaultConfigPath
		}
	}
	cfg, err := config.Load(configPath, env)
	if err != nil {
		return err
	}
	m.Config = cfg

	logger, err := initslog.NewLogger(stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	initiatives, err := m.openStore(cfg.Store)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set %s to use a different store path\n", config.EnvDB)
		return err
	}
	defer m.Close()

	deps.Config = cfg
	deps.Logger = logger
	deps.Initiatives = initiatives
	deps.Matcher = difflib.NewMatcher()

	// Wire command-specific dependencies based on command
	switch cmd {
	case "fetch", "ask", "chat", "serve":
		crawler, err := m.newCrawler(cfg, logger, initiatives)
		if err != nil {
			return err
		}
		deps.Crawler = crawler
	}

	switch cmd {
	case "fetch", "summarize", "ask", "chat", "serve":
		runner, err := m.newSummaryRunner(ctx, cfg, logger, initiatives, stderr)
		if err != nil {
			return err
		}
		deps.Summaries = runner
	}

	if cmd == "opinion" {
		client, err := newGeminiClient(ctx, cfg.LLM.APIKey, stderr)
		if err != nil {
			return err
		}
		deps.Opinions = gemini.NewOpinionAnalyzer(client, cfg.LLM.Model)
	}

	return kongCtx.Run(deps)
}

// openStore opens the configured initiative store.
func (m *Main) openStore(cfg config.StoreConfig) (initbot.InitiativeService, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		m.DB = sqlite.NewDB(cfg.Path)
		if err := m.DB.Open(); err != nil {
			return nil, fmt.Errorf("failed to open database at %q: %w", cfg.Path, err)
		}
		return sqlite.NewInitiativeService(m.DB), nil
	default:
		m.Cache = fs.NewCache(cfg.Path)
		if err := m.Cache.Open(); err != nil {
			return nil, fmt.Errorf("failed to open cache at %q: %w", cfg.Path, err)
		}
		return m.Cache, nil
	}
}

func (m *Main) newCrawler(cfg *config.Config, logger *slog.Logger, initiatives initbot.InitiativeService) (*crawl.Crawler, error) {
	if cfg.Source.Browser {
		fetcher, err := rod.NewFetcher(rod.WithTimeout(cfg.Source.Timeout))
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		m.fetcher = fetcher
	} else {
		opts := []inithttp.Option{inithttp.WithTimeout(cfg.Source.Timeout)}
		if cfg.Source.UserAgent != "" {
			opts = append(opts, inithttp.WithUserAgent(cfg.Source.UserAgent))
		}
		m.fetcher = inithttp.NewFetcher(opts...)
	}

	var extractor initbot.Extractor = trafilatura.NewExtractor()
	if cfg.Source.Extractor == config.ExtractorReadability {
		extractor = readability.NewExtractor(cfg.Source.IndexURL)
	}

	return &crawl.Crawler{
		Fetcher:     initslog.NewLoggingFetcher(m.fetcher, logger),
		Parser:      goquery.NewParser(),
		Initiatives: initiatives,
		Extractor:   extractor,
		Converter:   htmltomarkdown.NewConverter(),
		RateLimiter: crawl.NewDomainLimiter(cfg.Source.RequestsPerSecond),
		Concurrency: cfg.Source.Concurrency,
		Logf: func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		},
	}, nil
}

// newSummaryRunner uses Gemini when an API key is configured and the
// offline summarizer otherwise.
func (m *Main) newSummaryRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger, initiatives initbot.InitiativeService, stderr io.Writer) (*summarize.Runner, error) {
	runner := &summarize.Runner{
		Initiatives: initiatives,
		Concurrency: cfg.LLM.Concurrency,
	}

	if cfg.LLM.APIKey == "" {
		logger.Debug("no Gemini API key, using offline summarizer")
		runner.Summarizer = initslog.NewLoggingSummarizer(lexical.NewSummarizer(), logger)
		return runner, nil
	}

	client, err := newGeminiClient(ctx, cfg.LLM.APIKey, stderr)
	if err != nil {
		return nil, err
	}
	runner.Summarizer = initslog.NewLoggingSummarizer(gemini.NewSummarizer(client,
		gemini.WithModel(cfg.LLM.Model),
		gemini.WithLanguage(cfg.LLM.Language),
	), logger)

	if tc, err := gemini.NewTokenCounter(cfg.LLM.Model); err == nil {
		runner.TokenCounter = tc
	} else {
		logger.Debug("token counting disabled", "err", err)
	}
	return runner, nil
}

func newGeminiClient(ctx context.Context, apiKey string, stderr io.Writer) (*genai.Client, error) {
	if apiKey == "" {
		fmt.Fprintln(stderr, "Hint: Get an API key at https://aistudio.google.com/apikey")
		return nil, initbot.Errorf(initbot.EINVALID, "%s not set", config.EnvAPIKey)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Check your %s is valid\n", config.EnvAPIKey)
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return client, nil
}
