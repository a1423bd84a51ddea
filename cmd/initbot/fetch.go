package main

import (
	"fmt"

	"github.com/fwojciec/initbot/crawl"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	if cr, ok := deps.Crawler.(*crawl.Crawler); ok && c.Concurrency > 0 {
		cr.Concurrency = c.Concurrency
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d initiatives\n", event.Total)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  partial %s: %v\n", crawl.TruncateURL(event.URL, 60), event.Error)
		}
	}

	result, err := deps.Crawler.Crawl(deps.Ctx, deps.Config.Source.IndexURL, progress)
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintf(deps.Stdout, "  Saved %d initiatives (%s of text)\n", result.Saved, crawl.FormatBytes(result.Bytes))
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, "  %d with incomplete pages\n", result.Failed)
	}
	if result.MissingText > 0 {
		fmt.Fprintf(deps.Stdout, "  %d without full text\n", result.MissingText)
	}

	if !c.Summarize || deps.Summaries == nil {
		return nil
	}
	return runSummaries(deps)
}
