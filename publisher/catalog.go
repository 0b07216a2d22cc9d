package publisher

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Entry is one saved story in the library.
type Entry struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	File        string    `json:"file" yaml:"file"`
	Excerpt     string    `json:"excerpt" yaml:"excerpt"`
	Age         int       `json:"age" yaml:"age"`
	ReadingTime string    `json:"reading_time" yaml:"reading_time"`
	Score       int       `json:"score" yaml:"score"`
	Outcome     string    `json:"outcome" yaml:"outcome"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Catalog indexes saved stories in SQLite.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens or creates the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	_, err := c.db.Exec(`
	CREATE TABLE IF NOT EXISTS stories (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		file         TEXT NOT NULL,
		excerpt      TEXT NOT NULL DEFAULT '',
		age          INTEGER NOT NULL,
		reading_time TEXT NOT NULL DEFAULT '',
		score        INTEGER NOT NULL DEFAULT 0,
		outcome      TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_stories_created ON stories(created_at DESC);
	`)
	return err
}

// Record stores e with a fresh ID and timestamp and returns the stored entry.
func (c *Catalog) Record(ctx context.Context, e Entry) (Entry, error) {
	now := time.Now().UTC()
	e.ID = ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	e.CreatedAt = now.Truncate(time.Millisecond)

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO stories (id, title, file, excerpt, age, reading_time, score, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.File, e.Excerpt, e.Age, e.ReadingTime, e.Score, e.Outcome,
		e.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Entry{}, fmt.Errorf("insert story: %w", err)
	}
	return e, nil
}

// List returns the newest entries first. limit <= 0 means no limit.
func (c *Catalog) List(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT id, title, file, excerpt, age, reading_time, score, outcome, created_at
		FROM stories ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Title, &e.File, &e.Excerpt, &e.Age, &e.ReadingTime, &e.Score, &e.Outcome, &created); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
