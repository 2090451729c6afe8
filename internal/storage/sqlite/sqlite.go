package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/storage"

	_ "modernc.org/sqlite"
)

// SQLiteLibrary implements storage.Library backed by a SQLite database.
type SQLiteLibrary struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and runs migrations.
// Use ":memory:" for an in-memory database (useful for testing).
func Open(dbPath string) (*SQLiteLibrary, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteLibrary{db: db}, nil
}

func (l *SQLiteLibrary) SaveStory(ctx context.Context, st *storage.Story) error {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	st.ArchivedAt = time.Now().UTC()

	paragraphs, err := json.Marshal(st.Paragraphs)
	if err != nil {
		return fmt.Errorf("marshaling paragraphs: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO stories (id, title, genre, length, paragraphs, created_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			paragraphs = excluded.paragraphs,
			archived_at = excluded.archived_at`,
		st.ID, st.Title, st.Genre, st.Length, string(paragraphs),
		st.CreatedAt.Format(time.RFC3339), st.ArchivedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving story: %w", err)
	}
	return nil
}

func (l *SQLiteLibrary) GetStory(ctx context.Context, id string) (*storage.Story, error) {
	// Try exact match first, then prefix match
	st, err := l.getStoryExact(ctx, id)
	if err == nil {
		return st, nil
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, title, genre, length, paragraphs, created_at, archived_at
		FROM stories WHERE id LIKE ? || '%'`, id)
	if err != nil {
		return nil, fmt.Errorf("querying story: %w", err)
	}
	defer rows.Close()

	var matches []*storage.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, st)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous story prefix %q matches %d stories", id, len(matches))
	}
}

func (l *SQLiteLibrary) getStoryExact(ctx context.Context, id string) (*storage.Story, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, title, genre, length, paragraphs, created_at, archived_at
		FROM stories WHERE id = ?`, id)
	return scanStoryFromScanner(row)
}

func (l *SQLiteLibrary) ListStories(ctx context.Context, opts storage.ListOptions) ([]storage.Story, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, title, genre, length, paragraphs, created_at, archived_at FROM stories`
	var args []any

	if opts.Genre != "" {
		query += ` WHERE genre = ?`
		args = append(args, opts.Genre)
	}

	query += ` ORDER BY archived_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	var stories []storage.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *st)
	}
	return stories, rows.Err()
}

func (l *SQLiteLibrary) DeleteStory(ctx context.Context, id string) error {
	// Resolve prefix first
	st, err := l.GetStory(ctx, id)
	if err != nil {
		return err
	}

	_, err = l.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, st.ID)
	return err
}

func (l *SQLiteLibrary) Close() error {
	return l.db.Close()
}

// Scanner interface to work with both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanStoryFromScanner(s scanner) (*storage.Story, error) {
	var st storage.Story
	var paragraphs, createdAt, archivedAt string
	err := s.Scan(&st.ID, &st.Title, &st.Genre, &st.Length, &paragraphs, &createdAt, &archivedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(paragraphs), &st.Paragraphs); err != nil {
		return nil, fmt.Errorf("unmarshaling paragraphs: %w", err)
	}
	st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	st.ArchivedAt, _ = time.Parse(time.RFC3339, archivedAt)
	return &st, nil
}

func scanStory(rows *sql.Rows) (*storage.Story, error) {
	return scanStoryFromScanner(rows)
}
