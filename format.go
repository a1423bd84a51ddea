package initbot

import (
	"strings"
)

// ExcerptLength is the number of runes of full text shown when an
// initiative has no summary.
const ExcerptLength = 300

// FormatInitiative formats an initiative as Markdown for display.
// Empty fields are omitted. The summary is used when present, otherwise an
// excerpt of the full text.
func FormatInitiative(i *Initiative) string {
	var sb strings.Builder
	sb.WriteString("## " + i.Title + "\n")

	field := func(label, value string) {
		if value != "" {
			sb.WriteString("- **" + label + ":** " + value + "\n")
		}
	}
	field("Status", i.Status)
	field("Preliminary review", i.PreliminaryReview)
	field("Start of collection", i.StartOfCollection)
	field("Collection deadline", i.ExpiryOfCollectionPeriod)
	field("Submitted", i.SubmittedOn)
	field("Parliament decision", i.ParliamentDecision)
	field("Vote", i.VotedOn)
	field("Result", i.Result)
	field("Entry into force", i.EntryIntoForce)

	if text := summaryOrExcerpt(i); text != "" {
		sb.WriteString("\n" + text + "\n")
	}
	if len(i.Keywords) > 0 {
		sb.WriteString("\n*Keywords:* " + strings.Join(i.Keywords, ", ") + "\n")
	}
	if i.Link != "" {
		sb.WriteString("\nSource: " + i.Link + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatInitiatives formats initiatives as a short Markdown list.
// Initiatives are separated by blank lines.
func FormatInitiatives(initiatives []*Initiative) string {
	if len(initiatives) == 0 {
		return ""
	}

	parts := make([]string, 0, len(initiatives))
	for _, i := range initiatives {
		line := "**" + i.Title + "**"
		if i.Status != "" {
			line += " (" + i.Status + ")"
		}
		if text := summaryOrExcerpt(i); text != "" {
			line += "\n" + text
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, "\n\n")
}

func summaryOrExcerpt(i *Initiative) string {
	if i.Summary != "" {
		return i.Summary
	}
	return Excerpt(i.FullText, ExcerptLength)
}

// Excerpt truncates text to at most n runes at a word boundary and
// appends an ellipsis when anything was cut.
func Excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
