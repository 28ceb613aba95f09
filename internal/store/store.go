package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lmeyer/fedidigest/pkg/digest"
)

// Run records one successful digest build.
type Run struct {
	ID         int64     `db:"id" json:"id"`
	FetchedAt  time.Time `db:"fetched_at" json:"fetched_at"`
	Strategy   string    `db:"strategy" json:"strategy"`
	Tone       string    `db:"tone" json:"tone"`
	TotalPosts int       `db:"total_posts" json:"total_posts"`
	Selected   int       `db:"selected" json:"selected"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Entry is one selected post within an archived run.
type Entry struct {
	ID       int64   `db:"id" json:"id"`
	RunID    int64   `db:"run_id" json:"run_id"`
	Category string  `db:"category" json:"category"`
	Rank     int     `db:"rank" json:"rank"`
	PostID   string  `db:"post_id" json:"post_id"`
	Author   string  `db:"author" json:"author"`
	URL      string  `db:"url" json:"url"`
	Score    float64 `db:"score" json:"score"`
	Excerpt  string  `db:"excerpt" json:"excerpt"`
}

// RunListOpts controls run listing.
type RunListOpts struct {
	Limit int
}

// Store is the run archive interface.
type Store interface {
	SaveRun(ctx context.Context, d *digest.Digest) (int64, error)
	ListRuns(ctx context.Context, opts RunListOpts) ([]Run, error)
	LatestRun(ctx context.Context) (*Run, error)
	GetEntries(ctx context.Context, runID int64) ([]Entry, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun archives a digest and its selected entries in one
// transaction. Returns the new run id.
func (s *SQLiteStore) SaveRun(ctx context.Context, d *digest.Digest) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (fetched_at, strategy, tone, total_posts, selected, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.Meta.FetchedAt, d.Meta.Strategy, d.Meta.Tone, d.Meta.TotalPosts,
		d.PostCount(), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, sel := range d.Selections {
		for rank, p := range sel.Posts {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO entries (run_id, category, rank, post_id, author, url, score, excerpt)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, runID, sel.Category.Name, rank+1, p.ID, p.Author, p.Status.URL,
				p.Score, excerpt(p.Status.Content))
			if err != nil {
				return 0, fmt.Errorf("insert entry %s: %w", p.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, opts RunListOpts) ([]Run, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		"SELECT * FROM runs ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run,
		"SELECT * FROM runs ORDER BY created_at DESC LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return &run, nil
}

func (s *SQLiteStore) GetEntries(ctx context.Context, runID int64) ([]Entry, error) {
	var entries []Entry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM entries WHERE run_id = ? ORDER BY category, rank", runID)
	if err != nil {
		return nil, fmt.Errorf("get entries %d: %w", runID, err)
	}
	return entries, nil
}

func excerpt(content string) string {
	text := digest.StripHTML(content)
	runes := []rune(text)
	if len(runes) <= 140 {
		return text
	}
	return string(runes[:140]) + "..."
}
