// Package readability extracts the main content of full-text pages with
// go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/initbot"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements initbot.Extractor at compile time.
var _ initbot.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct {
	pageURL *url.URL
}

// NewExtractor creates a new Extractor. Relative links in the extracted
// content are resolved against pageURL when it is not empty.
func NewExtractor(pageURL string) *Extractor {
	e := &Extractor{}
	if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
		e.pageURL = u
	}
	return e
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*initbot.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, initbot.Errorf(initbot.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.pageURL)
	if err != nil {
		return nil, err
	}

	return &initbot.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
