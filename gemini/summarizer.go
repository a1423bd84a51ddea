package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/initbot"
	"google.golang.org/genai"
)

// DefaultLanguage is the language summaries are written in.
const DefaultLanguage = "English"

// MaxKeywords caps the keywords kept from a response.
const MaxKeywords = 8

// Ensure Summarizer implements initbot.Summarizer at compile time.
var _ initbot.Summarizer = (*Summarizer)(nil)

// Summarizer implements initbot.Summarizer using Google Gemini.
type Summarizer struct {
	client   *genai.Client
	model    string
	language string
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithModel sets the Gemini model.
func WithModel(model string) SummarizerOption {
	return func(s *Summarizer) {
		if model != "" {
			s.model = model
		}
	}
}

// WithLanguage sets the output language of the summaries.
func WithLanguage(language string) SummarizerOption {
	return func(s *Summarizer) {
		if language != "" {
			s.language = language
		}
	}
}

// NewSummarizer creates a new Summarizer.
func NewSummarizer(client *genai.Client, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		client:   client,
		model:    DefaultModel,
		language: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a short summary and keywords for the initiative text.
func (s *Summarizer) Summarize(ctx context.Context, initiative *initbot.Initiative) (*initbot.Summary, error) {
	if initiative == nil || strings.TrimSpace(initiative.FullText) == "" {
		return nil, initbot.Errorf(initbot.EINVALID, "initiative text required")
	}

	var out initbot.Summary
	if err := generate(ctx, s.client, s.model, BuildSummaryPrompt(initiative), BuildSummaryConfig(s.language), &out); err != nil {
		return nil, err
	}
	return normalizeSummary(&out), nil
}

// BuildSummaryConfig returns the GenerateContentConfig for summary requests.
func BuildSummaryConfig(language string) *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: fmt.Sprintf("You summarize Swiss popular initiatives for citizens. "+
					"Write a neutral summary of at most three sentences in %s and list up to %d short keywords. "+
					"Use only the text provided.", language, MaxKeywords),
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString},
				"keywords": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"summary", "keywords"},
		},
	}
}

// BuildSummaryPrompt builds the user prompt containing the initiative text.
func BuildSummaryPrompt(initiative *initbot.Initiative) string {
	var sb strings.Builder
	sb.WriteString("<initiative>\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", initiative.Title)
	fmt.Fprintf(&sb, "<text>%s</text>\n", truncate(initiative.FullText, MaxInputChars))
	sb.WriteString("</initiative>")
	return sb.String()
}

func normalizeSummary(s *initbot.Summary) *initbot.Summary {
	out := &initbot.Summary{Text: strings.TrimSpace(s.Text)}
	seen := make(map[string]bool)
	for _, k := range s.Keywords {
		k = strings.TrimSpace(k)
		key := strings.ToLower(k)
		if k == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Keywords = append(out.Keywords, k)
		if len(out.Keywords) == MaxKeywords {
			break
		}
	}
	return out
}
