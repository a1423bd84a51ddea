package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/initbot"
)

var _ initbot.Chatbot = (*LoggingChatbot)(nil)

// LoggingChatbot wraps a Chatbot with logging. Messages are not logged,
// only their size and the detected intent.
type LoggingChatbot struct {
	next   initbot.Chatbot
	logger *slog.Logger
}

// NewLoggingChatbot creates a new LoggingChatbot.
func NewLoggingChatbot(next initbot.Chatbot, logger *slog.Logger) *LoggingChatbot {
	return &LoggingChatbot{next: next, logger: logger}
}

// Respond delegates to the wrapped chatbot and logs the outcome.
func (c *LoggingChatbot) Respond(ctx context.Context, message string) (reply *initbot.Reply, err error) {
	defer func(begin time.Time) {
		var intent initbot.Intent
		var matches int
		if reply != nil {
			intent, matches = reply.Intent, len(reply.Matches)
		}
		c.logger.Info("respond",
			"chars", len(message),
			"intent", string(intent),
			"matches", matches,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Respond(ctx, message)
}
