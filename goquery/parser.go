// Package goquery parses the federal chancellery's initiative pages.
package goquery

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/initbot"
	"golang.org/x/net/html"
)

// Ensure Parser implements initbot.Parser at compile time.
var _ initbot.Parser = (*Parser)(nil)

// NotFound is the preliminary review text of listing rows without a date.
const NotFound = "Not Found"

// FullTextLinkText identifies the link to an initiative's full text.
const FullTextLinkText = "Die Initiative im Wortlaut"

// MinParagraphLength is the length a full-text paragraph must exceed to be kept.
const MinParagraphLength = 20

// Parser implements initbot.Parser using goquery.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseIndex returns one entry per table row containing a link.
// The text following the first <br> in a row is the preliminary review date.
// Rows linking to an already seen page are skipped. Links without text
// (icons) are titled by their title attribute or image alt text, which may
// leave the title empty.
func (p *Parser) ParseIndex(rawHTML, baseURL string) ([]initbot.IndexEntry, error) {
	base, doc, err := parse(rawHTML, baseURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []initbot.IndexEntry

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		a := row.Find("a[href]").First()
		if a.Length() == 0 {
			return
		}
		href, _ := a.Attr("href")
		if isNonHTTPLink(href) {
			return
		}
		link := resolveURL(base, href)
		if link == "" || seen[link] {
			return
		}
		seen[link] = true

		entries = append(entries, initbot.IndexEntry{
			Position:          len(entries),
			Title:             linkTitle(a),
			Link:              link,
			PreliminaryReview: reviewDate(row),
		})
	})

	return entries, nil
}

func linkTitle(a *goquery.Selection) string {
	if t := normalizeSpace(a.Text()); t != "" {
		return t
	}
	if t, ok := a.Attr("title"); ok && normalizeSpace(t) != "" {
		return normalizeSpace(t)
	}
	alt, _ := a.Find("img[alt]").First().Attr("alt")
	return normalizeSpace(alt)
}

// reviewDate returns the text node right after the row's first <br>.
func reviewDate(row *goquery.Selection) string {
	br := row.Find("br").First()
	if br.Length() == 0 {
		return NotFound
	}
	next := br.Nodes[0].NextSibling
	if next == nil || next.Type != html.TextNode {
		return NotFound
	}
	if text := normalizeSpace(next.Data); text != "" {
		return text
	}
	return NotFound
}

// ParseDetail reads the label/value rows of every table on an initiative page
// and the link to its full text.
func (p *Parser) ParseDetail(rawHTML, baseURL string) (*initbot.Detail, error) {
	base, doc, err := parse(rawHTML, baseURL)
	if err != nil {
		return nil, err
	}

	d := &initbot.Detail{}

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(normalizeSpace(a.Text()), FullTextLinkText) {
			return true
		}
		href, _ := a.Attr("href")
		d.FullTextLink = resolveURL(base, href)
		return false
	})

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(normalizeSpace(cells.Eq(0).Text()))
		value := normalizeSpace(cells.Eq(1).Text())

		switch {
		case strings.Contains(label, "vorprüfung"):
			d.PreliminaryExaminationFrom = value
		case strings.Contains(label, "ablauf der sammelfrist"):
			d.ExpiryOfCollectionPeriod = value
		case strings.Contains(label, "beginn der sammlung"):
			d.StartOfCollection = value
		case strings.Contains(label, "eingereicht am"):
			d.SubmittedOn = value
		case strings.Contains(label, "zur abstimmung"):
			d.VotedOn = value
		case strings.Contains(label, "inkrafttreten"):
			d.EntryIntoForce = value
		case strings.Contains(label, "beschluss des parlaments"), strings.Contains(label, "parlamentsbeschluss"):
			d.ParliamentDecision = value
		case strings.Contains(label, "ergebnis"):
			d.Result = translateResult(value)
		}
	})

	return d, nil
}

// translateResult maps the German vote outcome to the English result.
func translateResult(value string) string {
	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "angenommen"):
		return "Accepted"
	case strings.Contains(lower, "abgelehnt"):
		return "Rejected"
	default:
		return value
	}
}

// ParseFullText collects the direct <p> children of the first <article>.
// Paragraphs are whitespace-normalized, duplicates are dropped ignoring case,
// and paragraphs of MinParagraphLength runes or fewer are skipped.
func (p *Parser) ParseFullText(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", initbot.Errorf(initbot.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	var paragraphs []string

	doc.Find("article").First().ChildrenFiltered("p").Each(func(_ int, sel *goquery.Selection) {
		text := spacedText(sel.Nodes[0])
		key := strings.ToLower(text)
		if text == "" || seen[key] || utf8.RuneCountInString(text) <= MinParagraphLength {
			return
		}
		seen[key] = true
		paragraphs = append(paragraphs, text)
	})

	return strings.Join(paragraphs, "\n"), nil
}

// spacedText joins the descendant text nodes of n with single spaces, so
// inline elements do not glue words together.
func spacedText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return normalizeSpace(strings.Join(parts, " "))
}

func parse(rawHTML, baseURL string) (*url.URL, *goquery.Document, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, nil, initbot.Errorf(initbot.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, nil, initbot.Errorf(initbot.EINVALID, "failed to parse HTML: %v", err)
	}
	return base, doc, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed.
// Fragments are stripped from the resolved URL for deduplication purposes.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return href == "" ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
