package gemini

import (
	"context"

	"github.com/fwojciec/initbot"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// fallbackTokenizerModel is used when the local tokenizer does not know the
// configured model. Gemini models of one generation share a vocabulary, so
// counts stay close.
const fallbackTokenizerModel = "gemini-2.0-flash"

var _ initbot.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens locally using the Gemini tokenizer.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		var ferr error
		if tok, ferr = tokenizer.NewLocalTokenizer(fallbackTokenizerModel); ferr != nil {
			return nil, err
		}
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}, nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
