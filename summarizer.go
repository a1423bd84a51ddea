package initbot

import "context"

// Summary is the generated description of an initiative.
type Summary struct {
	Text     string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// Summarizer produces a short summary and keywords from an initiative's text.
type Summarizer interface {
	// Summarize returns the summary of the initiative's full text.
	// Returns EINVALID if the initiative has no text to summarize.
	Summarize(ctx context.Context, initiative *Initiative) (*Summary, error)
}

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
