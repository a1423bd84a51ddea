package main

import (
	"fmt"

	"github.com/fwojciec/initbot"
	"github.com/fwojciec/initbot/crawl"
	"github.com/fwojciec/initbot/summarize"
)

// Run executes the summarize command.
func (c *SummarizeCmd) Run(deps *Dependencies) error {
	if r, ok := deps.Summaries.(*summarize.Runner); ok {
		r.Force = c.Force
		if c.Concurrency > 0 {
			r.Concurrency = c.Concurrency
		}
	}
	return runSummaries(deps)
}

func runSummaries(deps *Dependencies) error {
	progress := func(completed, total int, i *initbot.Initiative, err error) {
		if err != nil {
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", i.ID, initbot.ErrorMessage(err))
			return
		}
		fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", completed, total, i.ID)
	}

	result, err := deps.Summaries.Run(deps.Ctx, progress)
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintf(deps.Stdout, "  Summarized %d initiatives (%d up to date, %d without text, %d failed)\n",
		result.Summarized, result.Skipped, result.NoText, result.Failed)
	if result.Tokens > 0 {
		fmt.Fprintf(deps.Stdout, "  Input: %s\n", crawl.FormatTokens(result.Tokens))
	}
	return nil
}
