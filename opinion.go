package initbot

import "context"

// Opinion labels.
const (
	OpinionPositive = "positive"
	OpinionNegative = "negative"
	OpinionNeutral  = "neutral"
	OpinionMixed    = "mixed"
)

// Opinion is the aggregated sentiment of public reactions to an initiative.
type Opinion struct {
	InitiativeID string   `json:"initiativeId"`
	Score        float64  `json:"score"` // -1 (against) to 1 (in favour)
	Label        string   `json:"label"`
	Highlights   []string `json:"highlights"`
}

// OpinionLabel returns the label matching a sentiment score.
func OpinionLabel(score float64) string {
	switch {
	case score >= 0.25:
		return OpinionPositive
	case score <= -0.25:
		return OpinionNegative
	default:
		return OpinionNeutral
	}
}

// OpinionAnalyzer scores reactions to an initiative.
type OpinionAnalyzer interface {
	// Analyze returns the opinion expressed by the reactions.
	// Returns EINVALID if no reactions are given.
	Analyze(ctx context.Context, initiative *Initiative, reactions []string) (*Opinion, error)
}
