// Package crawl fetches the initiative listing and every initiative's
// pages, and stores the resulting records.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fwojciec/initbot"
	"golang.org/x/sync/errgroup"
)

// DefaultIndexURL lists all federal popular initiatives.
const DefaultIndexURL = "https://www.bk.admin.ch/ch/d/pore/vi/vis_2_2_5_1.html"

// DefaultConcurrency is the number of initiatives processed at once.
const DefaultConcurrency = 4

// Crawler fetches initiative pages and writes the records to the cache.
type Crawler struct {
	Fetcher     initbot.Fetcher
	Parser      initbot.Parser
	Initiatives initbot.InitiativeService

	// Extractor and Converter read full-text pages the Parser finds no
	// paragraphs in. Both must be set for the fallback to run.
	Extractor initbot.Extractor
	Converter initbot.Converter

	RateLimiter initbot.DomainLimiter
	Concurrency int
	RetryDelays []time.Duration

	// Logf, if set, receives retry messages.
	Logf LogFunc

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of a crawl.
type Result struct {
	// Saved is the number of records written.
	Saved int
	// Failed is the number of initiatives whose detail or full-text page
	// could not be read, or whose listing row had no title. Their records
	// are saved with what was collected unless they lack an ID.
	Failed int
	// MissingText is the number of records saved without full text.
	MissingText int
	// Bytes is the total size of the collected full texts.
	Bytes int
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// crawlResult holds the outcome of processing a single listing entry.
type crawlResult struct {
	initiative *initbot.Initiative
	err        error
}

// Crawl fetches the listing at indexURL, then every initiative's detail and
// full-text pages, and upserts all records in one batch.
// Returns ENOTFOUND if the listing contains no initiatives.
func (c *Crawler) Crawl(ctx context.Context, indexURL string, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	html, err := c.fetch(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	entries, err := c.Parser.ParseIndex(html, indexURL)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	if len(entries) == 0 {
		return nil, initbot.Errorf(initbot.ENOTFOUND, "no initiatives found at %s", indexURL)
	}

	existing, err := c.existing(ctx)
	if err != nil {
		return nil, err
	}
	ids := resolveIDs(entries)

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(entries)
	progress(ProgressEvent{Type: ProgressStarted, Total: total})

	results := make([]crawlResult, total)
	var completed atomic.Int64
	events := make(chan ProgressEvent, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, entry := range entries {
			g.Go(func() error {
				r := c.processEntry(gctx, ids[i], entry, existing)
				results[i] = r

				ev := ProgressEvent{
					Type:      ProgressCompleted,
					Completed: int(completed.Add(1)),
					Total:     total,
					URL:       entry.Link,
				}
				if r.err != nil {
					ev.Type = ProgressFailed
					ev.Error = r.err
				}
				events <- ev
				return nil
			})
		}
		_ = g.Wait()
		close(events)
	}()

	for ev := range events {
		progress(ev)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result Result
	initiatives := make([]*initbot.Initiative, 0, total)
	for _, r := range results {
		i := r.initiative
		if r.err != nil {
			result.Failed++
		}
		if i.Validate() != nil {
			if r.err == nil {
				result.Failed++
			}
			continue
		}
		if i.FullText == "" {
			result.MissingText++
		}
		result.Bytes += len(i.FullText)
		initiatives = append(initiatives, i)
	}

	if err := c.Initiatives.UpsertInitiatives(ctx, initiatives); err != nil {
		return nil, fmt.Errorf("save initiatives: %w", err)
	}
	result.Saved = len(initiatives)

	progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	return &result, nil
}

// resolveIDs derives the record ID of every entry. An ID already taken by an
// earlier entry gets the entry's position appended.
func resolveIDs(entries []initbot.IndexEntry) []string {
	seen := make(map[string]bool, len(entries))
	ids := make([]string, len(entries))
	for n, e := range entries {
		id := initbot.InitiativeID(e.Link, e.Title)
		if seen[id] {
			id += "-" + strconv.Itoa(e.Position)
		}
		seen[id] = true
		ids[n] = id
	}
	return ids
}

// existing returns the cached records keyed by ID.
func (c *Crawler) existing(ctx context.Context) (map[string]*initbot.Initiative, error) {
	all, err := c.Initiatives.FindInitiatives(ctx, initbot.InitiativeFilter{})
	if err != nil {
		return nil, fmt.Errorf("load cached initiatives: %w", err)
	}
	m := make(map[string]*initbot.Initiative, len(all))
	for _, i := range all {
		m[i.ID] = i
	}
	return m, nil
}

// processEntry builds the record for one listing entry.
// A failed page is reported in err but never discards the record: when the
// detail page cannot be read, the previously cached fields are kept.
// An entry without a title keeps its cached title, or is titled by its ID,
// and is reported as failed.
func (c *Crawler) processEntry(ctx context.Context, id string, entry initbot.IndexEntry, existing map[string]*initbot.Initiative) crawlResult {
	prev := existing[id]

	i := &initbot.Initiative{}
	if prev != nil {
		i = prev.Clone()
	}
	i.ID = id
	i.Position = entry.Position
	if entry.Title != "" {
		i.Title = entry.Title
	}
	i.Link = entry.Link
	i.PreliminaryReview = entry.PreliminaryReview
	i.FetchedAt = c.now()

	err := c.fillDetail(ctx, i)
	if entry.Title == "" {
		if i.Title == "" {
			i.Title = id
		}
		err = errors.Join(err, initbot.Errorf(initbot.EINVALID, "no title for %s", entry.Link))
	}

	i.ContentHash = ContentHash(i.Title, i.FullText)
	if i.Status == "" || err == nil {
		i.Status = i.DeriveStatus(i.FetchedAt)
	}

	return crawlResult{initiative: i, err: err}
}

func (c *Crawler) fillDetail(ctx context.Context, i *initbot.Initiative) error {
	html, err := c.fetch(ctx, i.Link)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", i.Link, err)
	}
	detail, err := c.Parser.ParseDetail(html, i.Link)
	if err != nil {
		return fmt.Errorf("parse %s: %w", i.Link, err)
	}
	detail.Apply(i)

	if i.FullTextLink == "" {
		return nil
	}
	text, err := c.fullText(ctx, i.FullTextLink)
	if err != nil {
		return fmt.Errorf("full text %s: %w", i.FullTextLink, err)
	}
	i.FullText = text
	return nil
}

// fullText reads the initiative text from its page, falling back to
// main-content extraction when the page has no article paragraphs.
func (c *Crawler) fullText(ctx context.Context, link string) (string, error) {
	html, err := c.fetch(ctx, link)
	if err != nil {
		return "", err
	}
	text, err := c.Parser.ParseFullText(html)
	if err != nil {
		return "", err
	}
	if text != "" || c.Extractor == nil || c.Converter == nil {
		return text, nil
	}

	extracted, err := c.Extractor.Extract(html)
	if err != nil {
		return "", err
	}
	return c.Converter.Convert(extracted.ContentHTML)
}

// fetch waits for the rate limiter and fetches rawURL with retries.
func (c *Crawler) fetch(ctx context.Context, rawURL string) (string, error) {
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	fetchFn := func(ctx context.Context, u string) (string, error) {
		if c.RateLimiter != nil {
			if parsed, err := url.Parse(u); err == nil {
				if err := c.RateLimiter.Wait(ctx, parsed.Host); err != nil {
					return "", err
				}
			}
		}
		return c.Fetcher.Fetch(ctx, u)
	}
	return FetchWithRetry(ctx, rawURL, fetchFn, c.Logf, delays)
}

func (c *Crawler) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}
