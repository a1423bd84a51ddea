package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/initbot"
)

// Compile-time interface verification.
var _ initbot.InitiativeService = (*InitiativeService)(nil)

// InitiativeService implements initbot.InitiativeService using SQLite.
type InitiativeService struct {
	db *DB
}

// NewInitiativeService creates a new InitiativeService.
func NewInitiativeService(db *DB) *InitiativeService {
	return &InitiativeService{db: db}
}

const initiativeColumns = `id, position, title, link, preliminary_review, preliminary_examination_from,
	start_of_collection, expiry_of_collection_period, submitted_on, parliament_decision, voted_on,
	entry_into_force, status, result, full_text_link, full_text, content_hash, summary, keywords,
	summary_hash, fetched_at, summarized_at`

const upsertInitiativeSQL = `
	INSERT INTO initiatives (` + initiativeColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		position = excluded.position,
		title = excluded.title,
		link = excluded.link,
		preliminary_review = excluded.preliminary_review,
		preliminary_examination_from = excluded.preliminary_examination_from,
		start_of_collection = excluded.start_of_collection,
		expiry_of_collection_period = excluded.expiry_of_collection_period,
		submitted_on = excluded.submitted_on,
		parliament_decision = excluded.parliament_decision,
		voted_on = excluded.voted_on,
		entry_into_force = excluded.entry_into_force,
		status = excluded.status,
		result = excluded.result,
		full_text_link = excluded.full_text_link,
		full_text = excluded.full_text,
		content_hash = excluded.content_hash,
		summary = excluded.summary,
		keywords = excluded.keywords,
		summary_hash = excluded.summary_hash,
		fetched_at = excluded.fetched_at,
		summarized_at = excluded.summarized_at
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UpsertInitiative creates the initiative or overwrites the row with the same ID.
func (s *InitiativeService) UpsertInitiative(ctx context.Context, initiative *initbot.Initiative) error {
	if err := initiative.Validate(); err != nil {
		return err
	}
	return upsertInitiative(ctx, s.db, initiative)
}

// UpsertInitiatives upserts all initiatives in one transaction.
func (s *InitiativeService) UpsertInitiatives(ctx context.Context, initiatives []*initbot.Initiative) error {
	for _, i := range initiatives {
		if err := i.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, i := range initiatives {
		if err := upsertInitiative(ctx, tx, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertInitiative(ctx context.Context, db execer, i *initbot.Initiative) error {
	keywords := i.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	kw, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	_, err = db.ExecContext(ctx, upsertInitiativeSQL,
		i.ID, i.Position, i.Title, i.Link, i.PreliminaryReview, i.PreliminaryExaminationFrom,
		i.StartOfCollection, i.ExpiryOfCollectionPeriod, i.SubmittedOn, i.ParliamentDecision, i.VotedOn,
		i.EntryIntoForce, i.Status, i.Result, i.FullTextLink, i.FullText, i.ContentHash, i.Summary, string(kw),
		i.SummaryHash, formatTime(i.FetchedAt), formatTime(i.SummarizedAt))
	return err
}

// FindInitiativeByID retrieves an initiative by ID.
func (s *InitiativeService) FindInitiativeByID(ctx context.Context, id string) (*initbot.Initiative, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+initiativeColumns+" FROM initiatives WHERE id = ?", id)
	i, err := scanInitiative(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, initbot.Errorf(initbot.ENOTFOUND, "initiative not found")
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

// FindInitiatives retrieves initiatives matching the filter ordered by position.
// Title and status matching is case-insensitive for ASCII letters only.
func (s *InitiativeService) FindInitiatives(ctx context.Context, filter initbot.InitiativeFilter) ([]*initbot.Initiative, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + initiativeColumns + " FROM initiatives WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Status != nil {
		query.WriteString(` AND status LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(*filter.Status))
	}
	if filter.Year != nil {
		query.WriteString(" AND instr(submitted_on, ?) > 0")
		args = append(args, *filter.Year)
	}
	if filter.Title != nil {
		query.WriteString(` AND title LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(*filter.Title))
	}

	query.WriteString(" ORDER BY position ASC, id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	initiatives := []*initbot.Initiative{}
	for rows.Next() {
		i, err := scanInitiative(rows)
		if err != nil {
			return nil, err
		}
		initiatives = append(initiatives, i)
	}
	return initiatives, rows.Err()
}

// UpdateInitiative updates an existing initiative.
func (s *InitiativeService) UpdateInitiative(ctx context.Context, id string, upd initbot.InitiativeUpdate) (*initbot.Initiative, error) {
	i, err := s.FindInitiativeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Apply(i)

	if err := upsertInitiative(ctx, s.db, i); err != nil {
		return nil, err
	}
	return i, nil
}

// DeleteInitiative permanently removes an initiative.
func (s *InitiativeService) DeleteInitiative(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM initiatives WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return initbot.Errorf(initbot.ENOTFOUND, "initiative not found")
	}

	return nil
}

// LastFetched returns the most recent fetch time, or the zero time if no
// initiative has been fetched.
func (s *InitiativeService) LastFetched(ctx context.Context) (time.Time, error) {
	var fetchedAt sql.NullString
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(fetched_at) FROM initiatives").Scan(&fetchedAt); err != nil {
		return time.Time{}, err
	}
	if !fetchedAt.Valid {
		return time.Time{}, nil
	}
	return parseTime(fetchedAt.String, "fetched_at")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInitiative(row scanner) (*initbot.Initiative, error) {
	var i initbot.Initiative
	var keywords, fetchedAt, summarizedAt string

	if err := row.Scan(&i.ID, &i.Position, &i.Title, &i.Link, &i.PreliminaryReview, &i.PreliminaryExaminationFrom,
		&i.StartOfCollection, &i.ExpiryOfCollectionPeriod, &i.SubmittedOn, &i.ParliamentDecision, &i.VotedOn,
		&i.EntryIntoForce, &i.Status, &i.Result, &i.FullTextLink, &i.FullText, &i.ContentHash, &i.Summary, &keywords,
		&i.SummaryHash, &fetchedAt, &summarizedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(keywords), &i.Keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keywords: %w", err)
	}
	if len(i.Keywords) == 0 {
		i.Keywords = nil
	}

	var err error
	if i.FetchedAt, err = parseTime(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}
	if i.SummarizedAt, err = parseTime(summarizedAt, "summarized_at"); err != nil {
		return nil, err
	}
	return &i, nil
}
