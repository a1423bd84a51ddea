package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/initbot"
	"google.golang.org/genai"
)

// MaxReactions caps the reactions sent in a single request.
const MaxReactions = 200

// Ensure OpinionAnalyzer implements initbot.OpinionAnalyzer at compile time.
var _ initbot.OpinionAnalyzer = (*OpinionAnalyzer)(nil)

// OpinionAnalyzer implements initbot.OpinionAnalyzer using Google Gemini.
type OpinionAnalyzer struct {
	client *genai.Client
	model  string
}

// NewOpinionAnalyzer creates a new OpinionAnalyzer.
func NewOpinionAnalyzer(client *genai.Client, model string) *OpinionAnalyzer {
	if model == "" {
		model = DefaultModel
	}
	return &OpinionAnalyzer{client: client, model: model}
}

type opinionResponse struct {
	Score      float64  `json:"score"`
	Label      string   `json:"label"`
	Highlights []string `json:"highlights"`
}

// Analyze scores the reactions to the initiative.
func (a *OpinionAnalyzer) Analyze(ctx context.Context, initiative *initbot.Initiative, reactions []string) (*initbot.Opinion, error) {
	if initiative == nil {
		return nil, initbot.Errorf(initbot.EINVALID, "initiative required")
	}
	reactions = nonEmpty(reactions)
	if len(reactions) == 0 {
		return nil, initbot.Errorf(initbot.EINVALID, "reactions required")
	}

	var out opinionResponse
	if err := generate(ctx, a.client, a.model, BuildOpinionPrompt(initiative, reactions), BuildOpinionConfig(), &out); err != nil {
		return nil, err
	}
	return NewOpinion(initiative.ID, out.Score, out.Label, out.Highlights), nil
}

// NewOpinion builds an Opinion from a model response. The score is clamped
// to [-1, 1] and unknown labels are replaced by the label for the score.
func NewOpinion(initiativeID string, score float64, label string, highlights []string) *initbot.Opinion {
	score = max(-1, min(1, score))
	switch label = strings.ToLower(strings.TrimSpace(label)); label {
	case initbot.OpinionPositive, initbot.OpinionNegative, initbot.OpinionNeutral, initbot.OpinionMixed:
	default:
		label = initbot.OpinionLabel(score)
	}
	return &initbot.Opinion{
		InitiativeID: initiativeID,
		Score:        score,
		Label:        label,
		Highlights:   nonEmpty(highlights),
	}
}

// BuildOpinionConfig returns the GenerateContentConfig for opinion requests.
func BuildOpinionConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You analyze public reactions to a Swiss popular initiative. " +
					"Return a score from -1 (strongly against) to 1 (strongly in favour), " +
					"a label (positive, negative, neutral or mixed) and up to three short highlights quoting recurring arguments.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score": {Type: genai.TypeNumber},
				"label": {
					Type: genai.TypeString,
					Enum: []string{initbot.OpinionPositive, initbot.OpinionNegative, initbot.OpinionNeutral, initbot.OpinionMixed},
				},
				"highlights": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"score", "label"},
		},
	}
}

// BuildOpinionPrompt builds the user prompt containing the reactions.
func BuildOpinionPrompt(initiative *initbot.Initiative, reactions []string) string {
	if len(reactions) > MaxReactions {
		reactions = reactions[:MaxReactions]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<initiative>%s</initiative>\n", initiative.Title)
	sb.WriteString("<reactions>\n")
	for i, r := range reactions {
		fmt.Fprintf(&sb, "<reaction index=\"%d\">%s</reaction>\n", i+1, r)
	}
	sb.WriteString("</reactions>")
	return sb.String()
}

func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
