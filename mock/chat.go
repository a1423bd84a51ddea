package mock

import (
	"context"

	"github.com/fwojciec/initbot"
)

var _ initbot.Matcher = (*Matcher)(nil)

// Matcher is a mock implementation of initbot.Matcher.
type Matcher struct {
	RankFn func(query string, initiatives []*initbot.Initiative) []initbot.Match
}

func (m *Matcher) Rank(query string, initiatives []*initbot.Initiative) []initbot.Match {
	return m.RankFn(query, initiatives)
}

var _ initbot.Chatbot = (*Chatbot)(nil)

// Chatbot is a mock implementation of initbot.Chatbot.
type Chatbot struct {
	RespondFn func(ctx context.Context, message string) (*initbot.Reply, error)
}

func (c *Chatbot) Respond(ctx context.Context, message string) (*initbot.Reply, error) {
	return c.RespondFn(ctx, message)
}
