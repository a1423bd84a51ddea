// Package lexical provides an offline initbot.Summarizer that needs no
// network access or API key.
package lexical

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/initbot"
)

// Defaults for NewSummarizer.
const (
	DefaultSentences = 3
	DefaultKeywords  = 8
	MinKeywordLength = 4
)

// Ensure Summarizer implements initbot.Summarizer at compile time.
var _ initbot.Summarizer = (*Summarizer)(nil)

// Summarizer builds a summary from the leading sentences of the text and
// picks keywords by term frequency, ignoring German, French, Italian and
// English stop words.
type Summarizer struct {
	Sentences int
	Keywords  int
}

// NewSummarizer returns a Summarizer with default limits.
func NewSummarizer() *Summarizer {
	return &Summarizer{Sentences: DefaultSentences, Keywords: DefaultKeywords}
}

// Summarize returns the lead sentences and the most frequent terms.
func (s *Summarizer) Summarize(ctx context.Context, initiative *initbot.Initiative) (*initbot.Summary, error) {
	if initiative == nil || strings.TrimSpace(initiative.FullText) == "" {
		return nil, initbot.Errorf(initbot.EINVALID, "initiative text required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &initbot.Summary{
		Text:     LeadSentences(initiative.FullText, s.Sentences),
		Keywords: Keywords(initiative.Title+"\n"+initiative.FullText, s.Keywords),
	}, nil
}

var sentenceEndRe = regexp.MustCompile(`[.!?]["»”]?\s+`)

// LeadSentences returns the first n sentences of text on a single line.
func LeadSentences(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 {
		return text
	}

	var sentences []string
	for len(sentences) < n {
		// Skip ordinal and abbreviation dots such as "Art. 197 Ziff. 1" or
		// "1. Januar" until a real sentence end.
		pos := 0
		end := -1
		for {
			loc := sentenceEndRe.FindStringIndex(text[pos:])
			if loc == nil {
				break
			}
			pos += loc[1]
			if !isAbbreviation(strings.TrimSpace(text[:pos])) {
				end = pos
				break
			}
		}
		if end == -1 {
			break
		}
		sentences = append(sentences, strings.TrimSpace(text[:end]))
		text = text[end:]
	}
	if len(sentences) < n && strings.TrimSpace(text) != "" {
		sentences = append(sentences, strings.TrimSpace(text))
	}
	return strings.Join(sentences, " ")
}

var abbreviations = map[string]bool{
	"art": true, "abs": true, "bst": true, "ziff": true, "bzw": true,
	"vgl": true, "al": true, "let": true, "cpv": true, "lett": true,
	"etc": true, "z.b": true, "d.h": true, "u.a": true,
}

func isAbbreviation(sentence string) bool {
	fields := strings.Fields(strings.TrimRight(sentence, ".!?\"»”"))
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(fields[len(fields)-1])
	if abbreviations[last] {
		return true
	}
	for _, r := range last {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Keywords returns up to n of the most frequent significant words in text,
// most frequent first. Ties keep the order of first appearance.
func Keywords(text string, n int) []string {
	type term struct {
		word  string
		count int
		first int
	}

	terms := make(map[string]*term)
	for i, w := range Tokenize(text) {
		if utf8.RuneCountInString(w) < MinKeywordLength || IsStopWord(w) || isNumber(w) {
			continue
		}
		if t, ok := terms[w]; ok {
			t.count++
			continue
		}
		terms[w] = &term{word: w, count: 1, first: i}
	}

	list := make([]*term, 0, len(terms))
	for _, t := range terms {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].first < list[j].first
	})

	if n > 0 && len(list) > n {
		list = list[:n]
	}
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.word
	}
	return out
}

// Tokenize splits text into lower-case words.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isNumber(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
