// Package store persists lesson records in SQLite. The resolution engine
// treats lessons as values it receives and returns; this store is the
// collaborator that owns their lifecycle.
package store

import (
	"database/sql"
	"fmt"

	"github.com/edukit/lessond/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lessons (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpsertLesson inserts or replaces a lesson record.
func (s *Store) UpsertLesson(l model.Lesson) error {
	_, err := s.db.Exec(
		`INSERT INTO lessons (id, title, subject, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = ?, subject = ?, body = ?`,
		l.ID, l.Title, l.Subject, l.Body, l.Title, l.Subject, l.Body,
	)
	return err
}

// GetLesson returns a lesson by ID. Returns sql.ErrNoRows when absent.
func (s *Store) GetLesson(id string) (model.Lesson, error) {
	var l model.Lesson
	err := s.db.QueryRow(
		`SELECT id, title, subject, body FROM lessons WHERE id = ?`, id,
	).Scan(&l.ID, &l.Title, &l.Subject, &l.Body)
	return l, err
}

// ListLessons returns lessons, optionally filtered by subject.
// An empty subject means no filtering.
func (s *Store) ListLessons(subject string) ([]model.Lesson, error) {
	query := `SELECT id, title, subject, body FROM lessons`
	var args []any
	if subject != "" {
		query += ` WHERE subject = ? COLLATE NOCASE`
		args = append(args, subject)
	}
	query += ` ORDER BY id`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lessons []model.Lesson
	for rows.Next() {
		var l model.Lesson
		if err := rows.Scan(&l.ID, &l.Title, &l.Subject, &l.Body); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// LessonCount returns the number of lessons in the database.
func (s *Store) LessonCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM lessons`).Scan(&count)
	return count, err
}

// GetImportedFileHash returns the recorded content hash for an imported
// lesson file, or empty string if the file was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the content hash of an imported lesson file.
func (s *Store) SetImportedFileHash(path, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, hash) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = ?`,
		path, hash, hash,
	)
	return err
}
