package initbot

import "context"

// Intent classifies a chat message.
type Intent string

// Chat intents in the order they are detected.
const (
	IntentGreeting   Intent = "greeting"
	IntentFarewell   Intent = "farewell"
	IntentProcess    Intent = "process"
	IntentStatistics Intent = "statistics"
	IntentInitiative Intent = "initiative"
	IntentSearch     Intent = "search"
	IntentFallback   Intent = "fallback"
)

// Match is an initiative scored against a query.
type Match struct {
	Initiative *Initiative `json:"initiative"`

	// Score is the relevance in [0, 1]; 1 means the query contains the title.
	Score float64 `json:"score"`

	// Ratio is the similarity of the whole query to the whole title,
	// used to break ties between equal scores.
	Ratio float64 `json:"ratio"`
}

// Matcher ranks initiatives by their relevance to a free-text query.
type Matcher interface {
	// Rank scores every initiative and returns them ordered by Score
	// descending, then Ratio descending, then Position ascending.
	Rank(query string, initiatives []*Initiative) []Match
}

// Reply is the chatbot's answer to a single message.
type Reply struct {
	Intent  Intent  `json:"intent"`
	Text    string  `json:"text"`
	Matches []Match `json:"matches,omitempty"`
}

// Chatbot answers questions about popular initiatives.
// Each message is answered on its own; no conversation state is kept.
type Chatbot interface {
	Respond(ctx context.Context, message string) (*Reply, error)
}
