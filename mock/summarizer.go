package mock

import (
	"context"

	"github.com/fwojciec/initbot"
)

var _ initbot.Summarizer = (*Summarizer)(nil)

// Summarizer is a mock implementation of initbot.Summarizer.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, initiative *initbot.Initiative) (*initbot.Summary, error)
}

func (s *Summarizer) Summarize(ctx context.Context, initiative *initbot.Initiative) (*initbot.Summary, error) {
	return s.SummarizeFn(ctx, initiative)
}

var _ initbot.OpinionAnalyzer = (*OpinionAnalyzer)(nil)

// OpinionAnalyzer is a mock implementation of initbot.OpinionAnalyzer.
type OpinionAnalyzer struct {
	AnalyzeFn func(ctx context.Context, initiative *initbot.Initiative, reactions []string) (*initbot.Opinion, error)
}

func (a *OpinionAnalyzer) Analyze(ctx context.Context, initiative *initbot.Initiative, reactions []string) (*initbot.Opinion, error) {
	return a.AnalyzeFn(ctx, initiative, reactions)
}
