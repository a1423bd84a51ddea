// Package difflib implements initbot.Matcher on top of the go-difflib
// sequence matcher.
package difflib

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/initbot"
	"github.com/fwojciec/initbot/lexical"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ContentWeight scales the keyword and summary score so that a content hit
// never outranks a matching title.
const ContentWeight = 0.8

// MinTokenLength is the shortest query word considered for content matching.
const MinTokenLength = 3

// Ensure Matcher implements initbot.Matcher at compile time.
var _ initbot.Matcher = (*Matcher)(nil)

// Matcher scores initiatives by fuzzy title similarity and by how many query
// words appear in their keywords and summary.
type Matcher struct{}

// NewMatcher returns a new Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Rank scores every initiative against the query, best first.
func (m *Matcher) Rank(query string, initiatives []*initbot.Initiative) []initbot.Match {
	q := Normalize(query)
	tokens := significantTokens(q)

	matches := make([]initbot.Match, 0, len(initiatives))
	for _, i := range initiatives {
		title := Normalize(i.Title)
		score := PartialRatio(q, title)
		if c := ContentWeight * contentScore(tokens, i); c > score {
			score = c
		}
		matches = append(matches, initbot.Match{
			Initiative: i,
			Score:      score,
			Ratio:      Ratio(q, title),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		ma, mb := matches[a], matches[b]
		if ma.Score != mb.Score {
			return ma.Score > mb.Score
		}
		if ma.Ratio != mb.Ratio {
			return ma.Ratio > mb.Ratio
		}
		return ma.Initiative.Position < mb.Initiative.Position
	})
	return matches
}

// Ratio returns the similarity of a and b in [0, 1].
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		if a == b {
			return 1
		}
		return 0
	}
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// PartialRatio returns the best Ratio of the shorter string against every
// window of the same length in the longer one. A string contained in the
// other scores 1. Strings shorter than three runes fall back to Ratio.
func PartialRatio(a, b string) float64 {
	short, long := chars(a), chars(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) < 3 {
		return Ratio(a, b)
	}
	if strings.Contains(strings.Join(long, ""), strings.Join(short, "")) {
		return 1
	}

	// Seq2 is the fixed side; the matcher caches its index.
	sm := difflib.NewMatcher(nil, short)
	best := 0.0
	for start := 0; start+len(short) <= len(long); start++ {
		sm.SetSeq1(long[start : start+len(short)])
		if r := sm.Ratio(); r > best {
			best = r
		}
	}
	return best
}

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases s, strips diacritics, replaces punctuation and
// quotes with spaces and collapses whitespace.
func Normalize(s string) string {
	folded, _, err := transform.String(foldDiacritics, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

func chars(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// ignoredWords holds the normalized stop words plus words common in chat
// questions that say nothing about the topic.
var ignoredWords = func() map[string]bool {
	m := map[string]bool{
		"tell": true, "know": true, "information": true, "details": true,
		"initiative": true, "initiatives": true, "please": true, "show": true,
		"find": true, "search": true, "want": true, "like": true, "give": true,
	}
	for _, w := range lexical.StopWords() {
		m[Normalize(w)] = true
	}
	return m
}()

func significantTokens(normalized string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(normalized) {
		if utf8.RuneCountInString(w) < MinTokenLength || ignoredWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// contentScore returns the share of tokens that start a word of the
// initiative's keywords or summary.
func contentScore(tokens []string, i *initbot.Initiative) float64 {
	if len(tokens) == 0 {
		return 0
	}
	words := strings.Fields(Normalize(strings.Join(i.Keywords, " ") + " " + i.Summary))
	if len(words) == 0 {
		return 0
	}

	found := 0
	for _, t := range tokens {
		for _, w := range words {
			if strings.HasPrefix(w, t) {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(tokens))
}
