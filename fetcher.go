package initbot

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch returns the HTML of the page at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// IndexEntry is one row of the initiative listing page.
type IndexEntry struct {
	Position          int
	Title             string
	Link              string
	PreliminaryReview string
}

// Detail holds the fields read from an initiative's page.
// Dates keep the text published on the page.
type Detail struct {
	PreliminaryExaminationFrom string
	StartOfCollection          string
	ExpiryOfCollectionPeriod   string
	SubmittedOn                string
	ParliamentDecision         string
	VotedOn                    string
	EntryIntoForce             string
	Result                     string
	FullTextLink               string
}

// Apply copies the non-empty detail fields onto the initiative.
func (d *Detail) Apply(i *Initiative) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&i.PreliminaryExaminationFrom, d.PreliminaryExaminationFrom)
	set(&i.StartOfCollection, d.StartOfCollection)
	set(&i.ExpiryOfCollectionPeriod, d.ExpiryOfCollectionPeriod)
	set(&i.SubmittedOn, d.SubmittedOn)
	set(&i.ParliamentDecision, d.ParliamentDecision)
	set(&i.VotedOn, d.VotedOn)
	set(&i.EntryIntoForce, d.EntryIntoForce)
	set(&i.Result, d.Result)
	set(&i.FullTextLink, d.FullTextLink)
}

// Parser reads initiative data out of the federal chancellery's pages.
type Parser interface {
	// ParseIndex returns one entry per listing row that links to an initiative.
	// Links are resolved against baseURL.
	ParseIndex(html, baseURL string) ([]IndexEntry, error)

	// ParseDetail reads the date table and the full-text link of an
	// initiative page. Links are resolved against baseURL.
	ParseDetail(html, baseURL string) (*Detail, error)

	// ParseFullText returns the paragraphs of the initiative text joined by
	// newlines. Returns an empty string if the page has no article paragraphs.
	ParseFullText(html string) (string, error)
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
// Used for full-text pages the Parser cannot read.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be clean HTML (e.g., from an Extractor).
	Convert(html string) (string, error)
}
