// Package chat implements the rule-based initbot.Chatbot.
package chat

import (
	"context"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/fwojciec/initbot"
)

// Defaults for NewBot.
const (
	DefaultDetailScore = 0.75
	DefaultMinScore    = 0.5
	DefaultLimit       = 5
)

// MaxSmallTalkWords is the longest message still treated as a greeting or
// farewell. Longer messages are questions that happen to contain "hi".
const MaxSmallTalkWords = 5

// Ensure Bot implements initbot.Chatbot at compile time.
var _ initbot.Chatbot = (*Bot)(nil)

// Bot answers questions from the cached initiatives.
type Bot struct {
	Initiatives initbot.InitiativeService
	Matcher     initbot.Matcher

	// DetailScore is the minimum score for answering with a single
	// initiative in full.
	DetailScore float64

	// MinScore is the minimum score for an initiative to be listed in
	// search results.
	MinScore float64

	// Limit caps the number of search results.
	Limit int

	// Intn picks a canned response. Defaults to math/rand.
	Intn func(n int) int
}

// NewBot returns a Bot with default thresholds.
func NewBot(initiatives initbot.InitiativeService, matcher initbot.Matcher) *Bot {
	return &Bot{
		Initiatives: initiatives,
		Matcher:     matcher,
		DetailScore: DefaultDetailScore,
		MinScore:    DefaultMinScore,
		Limit:       DefaultLimit,
		Intn:        rand.IntN,
	}
}

// Respond answers a single message.
func (b *Bot) Respond(ctx context.Context, message string) (*initbot.Reply, error) {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return nil, initbot.Errorf(initbot.EINVALID, "message required")
	}

	if IsGreeting(text) {
		return b.canned(initbot.IntentGreeting, GreetingResponses), nil
	}
	if IsFarewell(text) {
		return b.canned(initbot.IntentFarewell, FarewellResponses), nil
	}
	initiatives, err := b.Initiatives.FindInitiatives(ctx, initbot.InitiativeFilter{})
	if err != nil {
		return nil, err
	}

	// A named initiative wins over the process and statistics keywords,
	// so "tell me about the data protection initiative" is not statistics.
	if subject := InitiativeSubject(text); subject != "" {
		matches := b.Matcher.Rank(subject, initiatives)
		if len(matches) > 0 && matches[0].Score >= b.DetailScore {
			return &initbot.Reply{
				Intent:  initbot.IntentInitiative,
				Text:    initbot.FormatInitiative(matches[0].Initiative),
				Matches: matches[:1],
			}, nil
		}
	}

	if IsProcessQuestion(text) {
		return &initbot.Reply{Intent: initbot.IntentProcess, Text: ProcessDescription}, nil
	}
	if IsStatisticsQuestion(text) {
		return &initbot.Reply{
			Intent: initbot.IntentStatistics,
			Text:   initbot.ComputeStatistics(initiatives).Format(),
		}, nil
	}

	if matches := b.search(text, initiatives); len(matches) > 0 {
		found := make([]*initbot.Initiative, len(matches))
		for i, m := range matches {
			found[i] = m.Initiative
		}
		return &initbot.Reply{
			Intent: initbot.IntentSearch,
			Text: "Here's what I found related to your question:\n\n" +
				initbot.FormatInitiatives(found) +
				"\n\nWould you like more details about any of these initiatives?",
			Matches: matches,
		}, nil
	}

	return b.canned(initbot.IntentFallback, FallbackResponses), nil
}

func (b *Bot) search(text string, initiatives []*initbot.Initiative) []initbot.Match {
	var out []initbot.Match
	for _, m := range b.Matcher.Rank(text, initiatives) {
		if m.Score < b.MinScore {
			break
		}
		out = append(out, m)
		if b.Limit > 0 && len(out) == b.Limit {
			break
		}
	}
	return out
}

func (b *Bot) canned(intent initbot.Intent, responses []string) *initbot.Reply {
	intn := b.Intn
	if intn == nil {
		intn = rand.IntN
	}
	return &initbot.Reply{Intent: intent, Text: responses[intn(len(responses))]}
}

var (
	greetingRe   = regexp.MustCompile(`\b(hello|hi|hey|grüezi|gruezi|hallo|bonjour|buongiorno|salut|greetings)\b`)
	farewellRe   = regexp.MustCompile(`\b(bye|goodbye|auf wiedersehen|au revoir|arrivederci|ciao|see you|tschüss)\b`)
	processRe    = regexp.MustCompile(`how does an initiative work|what is a popular initiative|\bprocess\b|\brequirements?\b|how many signatures|\btimeline\b`)
	statisticsRe = regexp.MustCompile(`\bstatistics?\b|how many initiatives|success rate|\bpercentage\b|\bnumbers\b|\bdata\b|\bfigures\b`)

	subjectRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:tell|talk|know|information).+about\s+(.+)`),
		regexp.MustCompile(`what (?:is|was|are|were)\s+(.+)`),
		regexp.MustCompile(`details\s+(?:on|about)\s+(.+)`),
	}
)

// IsGreeting reports whether a short message greets the bot.
func IsGreeting(text string) bool {
	return isSmallTalk(text) && greetingRe.MatchString(text)
}

// IsFarewell reports whether a short message says goodbye.
func IsFarewell(text string) bool {
	return isSmallTalk(text) && farewellRe.MatchString(text)
}

func isSmallTalk(text string) bool {
	return len(strings.Fields(text)) <= MaxSmallTalkWords
}

// IsProcessQuestion reports whether the message asks how initiatives work.
func IsProcessQuestion(text string) bool {
	return processRe.MatchString(text)
}

// IsStatisticsQuestion reports whether the message asks for figures.
func IsStatisticsQuestion(text string) bool {
	return statisticsRe.MatchString(text)
}

// InitiativeSubject extracts the initiative named in questions such as
// "tell me about X" or "what is X". Returns an empty string if the message
// does not have that form.
func InitiativeSubject(text string) string {
	for _, re := range subjectRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if s := strings.Trim(m[1], " \t?!.«»\"'"); s != "" {
				return s
			}
		}
	}
	return ""
}
