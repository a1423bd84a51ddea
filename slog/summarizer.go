package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/initbot"
)

var _ initbot.Summarizer = (*LoggingSummarizer)(nil)

// LoggingSummarizer wraps a Summarizer with logging.
type LoggingSummarizer struct {
	next   initbot.Summarizer
	logger *slog.Logger
}

// NewLoggingSummarizer creates a new LoggingSummarizer.
func NewLoggingSummarizer(next initbot.Summarizer, logger *slog.Logger) *LoggingSummarizer {
	return &LoggingSummarizer{next: next, logger: logger}
}

// Summarize delegates to the wrapped summarizer and logs the outcome.
func (s *LoggingSummarizer) Summarize(ctx context.Context, initiative *initbot.Initiative) (summary *initbot.Summary, err error) {
	defer func(begin time.Time) {
		var id string
		var chars, keywords int
		if initiative != nil {
			id, chars = initiative.ID, len(initiative.FullText)
		}
		if summary != nil {
			keywords = len(summary.Keywords)
		}
		s.logger.Info("summarize",
			"id", id,
			"chars", chars,
			"keywords", keywords,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Summarize(ctx, initiative)
}
