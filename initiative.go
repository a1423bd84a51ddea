package initbot

import (
	"context"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Initiative statuses derived from the dates published for an initiative.
const (
	StatusPreliminaryReview = "Preliminary review"
	StatusCollecting        = "Collecting signatures"
	StatusExpired           = "Collection expired"
	StatusSubmitted         = "Submitted"
	StatusVoted             = "Voted"
)

// Initiative represents a popular initiative together with its generated summary.
// It is the record stored in the cache.
type Initiative struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`

	// Dates as published, e.g. "15.05.2018".
	PreliminaryReview          string `json:"preliminary_review,omitempty"`
	PreliminaryExaminationFrom string `json:"preliminary_examination_from,omitempty"`
	StartOfCollection          string `json:"start_of_collection,omitempty"`
	ExpiryOfCollectionPeriod   string `json:"expiry_of_collection_period,omitempty"`
	SubmittedOn                string `json:"submitted_on,omitempty"`
	ParliamentDecision         string `json:"parliament_decision,omitempty"`
	VotedOn                    string `json:"voted_on,omitempty"`
	EntryIntoForce             string `json:"entry_into_force,omitempty"`

	Status string `json:"status,omitempty"`
	Result string `json:"result,omitempty"`

	FullTextLink string `json:"full_text_link,omitempty"`
	FullText     string `json:"full_text,omitempty"`
	ContentHash  string `json:"content_hash,omitempty"`

	Summary     string   `json:"summary,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	SummaryHash string   `json:"summary_hash,omitempty"`

	FetchedAt    time.Time `json:"fetched_at"`
	SummarizedAt time.Time `json:"summarized_at"`
}

// Validate returns an error if the initiative contains invalid fields.
func (i *Initiative) Validate() error {
	if i.ID == "" {
		return Errorf(EINVALID, "initiative ID required")
	}
	if i.Title == "" {
		return Errorf(EINVALID, "initiative title required")
	}
	return nil
}

// Clone returns a deep copy of the initiative.
func (i *Initiative) Clone() *Initiative {
	other := *i
	if i.Keywords != nil {
		other.Keywords = append([]string(nil), i.Keywords...)
	}
	return &other
}

// NeedsSummary reports whether the summary is missing or was generated
// from different content than the record currently holds.
func (i *Initiative) NeedsSummary() bool {
	return i.Summary == "" || i.SummaryHash != i.ContentHash
}

// SubmissionYear returns the year the initiative was submitted, or an empty
// string if the submission date is unknown.
func (i *Initiative) SubmissionYear() string {
	return yearRe.FindString(i.SubmittedOn)
}

// DeriveStatus computes the lifecycle status from the published dates.
// Returns an empty string if no date is known.
func (i *Initiative) DeriveStatus(now time.Time) string {
	if _, ok := ParseDate(i.VotedOn); ok {
		return StatusVoted
	}
	if _, ok := ParseDate(i.SubmittedOn); ok {
		return StatusSubmitted
	}
	if expiry, ok := ParseDate(i.ExpiryOfCollectionPeriod); ok && expiry.Before(now) {
		return StatusExpired
	}
	if _, ok := ParseDate(i.StartOfCollection); ok {
		return StatusCollecting
	}
	if _, ok := ParseDate(i.PreliminaryExaminationFrom); ok {
		return StatusPreliminaryReview
	}
	if _, ok := ParseDate(i.PreliminaryReview); ok {
		return StatusPreliminaryReview
	}
	return ""
}

var (
	yearRe    = regexp.MustCompile(`\b(18|19|20)\d{2}\b`)
	dateDMYRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	dateISORe = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

// ParseDate finds the first date in s. Both the Swiss "02.01.2006" and the
// ISO "2006-01-02" forms are recognized; surrounding text is ignored.
func ParseDate(s string) (time.Time, bool) {
	if m := dateDMYRe.FindString(s); m != "" {
		if t, err := time.Parse("2.1.2006", m); err == nil {
			return t, true
		}
	}
	if m := dateISORe.FindString(s); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InitiativeID derives a stable identifier for an initiative.
// The base name of the page link is used when available
// (".../vis487.html" becomes "vis487"), otherwise a slug of the title.
func InitiativeID(link, title string) string {
	if link != "" {
		p := link
		if idx := strings.IndexAny(p, "?#"); idx != -1 {
			p = p[:idx]
		}
		base := path.Base(p)
		base = strings.TrimSuffix(base, path.Ext(base))
		if base != "" && base != "." && base != "/" {
			return base
		}
	}
	return Slugify(title)
}

// Slugify creates a URL-safe identifier from a title.
// Converts to lowercase, replaces spaces with hyphens, removes special chars.
func Slugify(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}

// InitiativeService represents a service for managing cached initiatives.
type InitiativeService interface {
	// UpsertInitiative creates the initiative or overwrites the record with the same ID.
	UpsertInitiative(ctx context.Context, initiative *Initiative) error

	// UpsertInitiatives upserts multiple initiatives in a single write.
	UpsertInitiatives(ctx context.Context, initiatives []*Initiative) error

	// FindInitiativeByID retrieves an initiative by ID.
	// Returns ENOTFOUND if the initiative does not exist.
	FindInitiativeByID(ctx context.Context, id string) (*Initiative, error)

	// FindInitiatives retrieves initiatives matching the filter,
	// ordered by position on the listing page.
	FindInitiatives(ctx context.Context, filter InitiativeFilter) ([]*Initiative, error)

	// UpdateInitiative updates an existing initiative.
	// Returns ENOTFOUND if the initiative does not exist.
	UpdateInitiative(ctx context.Context, id string, upd InitiativeUpdate) (*Initiative, error)

	// DeleteInitiative permanently removes an initiative.
	// Returns ENOTFOUND if the initiative does not exist.
	DeleteInitiative(ctx context.Context, id string) error

	// LastFetched returns the most recent fetch time across all initiatives.
	// Returns the zero time if the cache is empty.
	LastFetched(ctx context.Context) (time.Time, error)
}

// InitiativeFilter represents a filter for FindInitiatives.
// Status and Title match case-insensitive substrings, Year matches the
// submission date.
type InitiativeFilter struct {
	ID     *string `json:"id"`
	Status *string `json:"status"`
	Year   *string `json:"year"`
	Title  *string `json:"title"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Match returns true if the initiative passes the filter.
// Offset and Limit are not considered.
func (f *InitiativeFilter) Match(i *Initiative) bool {
	if f.ID != nil && i.ID != *f.ID {
		return false
	}
	if f.Status != nil && !containsFold(i.Status, *f.Status) {
		return false
	}
	if f.Year != nil && !strings.Contains(i.SubmittedOn, *f.Year) {
		return false
	}
	if f.Title != nil && !containsFold(i.Title, *f.Title) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// InitiativeUpdate represents fields that can be updated on an initiative.
type InitiativeUpdate struct {
	Status       *string    `json:"status"`
	Result       *string    `json:"result"`
	Summary      *string    `json:"summary"`
	Keywords     *[]string  `json:"keywords"`
	SummaryHash  *string    `json:"summaryHash"`
	SummarizedAt *time.Time `json:"summarizedAt"`
}

// Apply copies the set fields of the update onto the initiative.
func (u *InitiativeUpdate) Apply(i *Initiative) {
	if u.Status != nil {
		i.Status = *u.Status
	}
	if u.Result != nil {
		i.Result = *u.Result
	}
	if u.Summary != nil {
		i.Summary = *u.Summary
	}
	if u.Keywords != nil {
		i.Keywords = append([]string(nil), (*u.Keywords)...)
	}
	if u.SummaryHash != nil {
		i.SummaryHash = *u.SummaryHash
	}
	if u.SummarizedAt != nil {
		i.SummarizedAt = *u.SummarizedAt
	}
}

// FallbackInitiatives returns a minimal set of initiatives to serve when
// scraping fails and nothing has been cached yet.
func FallbackInitiatives() []*Initiative {
	return []*Initiative{
		{
			ID:          "for-responsible-business",
			Position:    0,
			Title:       "For responsible business",
			SubmittedOn: "2016-10-10",
			Status:      StatusVoted,
			Result:      "Rejected",
		},
		{
			ID:          "for-a-ban-on-financing-war-material-manufacturers",
			Position:    1,
			Title:       "For a ban on financing war material manufacturers",
			SubmittedOn: "2018-06-21",
			Status:      StatusVoted,
			Result:      "Rejected",
		},
	}
}
