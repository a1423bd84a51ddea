// Package gemini implements initbot services on top of Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fwojciec/initbot"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// MaxInputChars bounds the initiative text sent in a single request.
const MaxInputChars = 30000

// generate sends a single-turn prompt and decodes the JSON response into v.
func generate(ctx context.Context, client *genai.Client, model, prompt string, config *genai.GenerateContentConfig, v any) error {
	result, err := client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return err
	}
	if result == nil {
		return initbot.Errorf(initbot.EINTERNAL, "gemini returned nil result")
	}
	return decodeJSON(result.Text(), v)
}

// decodeJSON parses a model response, tolerating a surrounding Markdown
// code fence.
func decodeJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return initbot.Errorf(initbot.EINTERNAL, "gemini returned empty response")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return initbot.Errorf(initbot.EINTERNAL, "invalid gemini response: %v", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
