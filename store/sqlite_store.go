package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultTitle is used when a lesson is created without one
const DefaultTitle = "Untitled Lesson"

// SQLiteStore keeps lessons in a single SQLite file
type SQLiteStore struct {
	path  string
	now   func() time.Time
	newID func() string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the database at path. Init opens it lazily.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path:  path,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Init opens the database and creates the schema
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	// one connection serializes writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS lessons (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  ui_schema TEXT,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chats (
  lesson_id TEXT PRIMARY KEY REFERENCES lessons(id) ON DELETE CASCADE,
  messages TEXT NOT NULL DEFAULT '[]',
  updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lessons_updated_at ON lessons(updated_at);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db
	return nil
}

// Close releases the database
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) ensureDB(ctx context.Context) (*sql.DB, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("sqlite db not initialized")
	}
	return s.db, nil
}

// CreateLesson inserts a lesson with an empty document and transcript
func (s *SQLiteStore) CreateLesson(ctx context.Context, title string) (Lesson, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return Lesson{}, err
	}

	now := s.now().UTC()
	lesson := Lesson{
		ID:        s.newID(),
		Title:     defaultIfEmpty(title, DefaultTitle),
		CreatedAt: now,
		UpdatedAt: now,
	}
	document, err := json.Marshal(models.NewLessonUIState(lesson.ID))
	if err != nil {
		return Lesson{}, fmt.Errorf("failed to encode document: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Lesson{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lessons(id, title, ui_schema, created_at, updated_at) VALUES(?, ?, ?, ?, ?)`,
		lesson.ID, lesson.Title, string(document), now.UnixMilli(), now.UnixMilli(),
	); err != nil {
		return Lesson{}, fmt.Errorf("failed to insert lesson: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chats(lesson_id, messages, updated_at) VALUES(?, '[]', ?)`,
		lesson.ID, now.UnixMilli(),
	); err != nil {
		return Lesson{}, fmt.Errorf("failed to insert chat: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Lesson{}, err
	}
	return lesson, nil
}

// GetLesson returns the catalog entry of one lesson
func (s *SQLiteStore) GetLesson(ctx context.Context, lessonID string) (Lesson, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return Lesson{}, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM lessons WHERE id = ?`, lessonID)
	lesson, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Lesson{}, ErrNotFound
	}
	return lesson, err
}

// ListLessons returns every lesson, most recently updated first
func (s *SQLiteStore) ListLessons(ctx context.Context) ([]Lesson, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM lessons ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	lessons := []Lesson{}
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// UpdateTitle renames a lesson
func (s *SQLiteStore) UpdateTitle(ctx context.Context, lessonID, title string) (Lesson, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return Lesson{}, err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE lessons SET title = ?, updated_at = ? WHERE id = ?`,
		defaultIfEmpty(title, DefaultTitle), s.now().UTC().UnixMilli(), lessonID)
	if err != nil {
		return Lesson{}, err
	}
	if err := requireRow(res); err != nil {
		return Lesson{}, err
	}
	return s.GetLesson(ctx, lessonID)
}

// DeleteLesson removes a lesson with its document and transcript
func (s *SQLiteStore) DeleteLesson(ctx context.Context, lessonID string) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chats WHERE lesson_id = ?`, lessonID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, lessonID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadDocument returns the stored document, or an empty one if none was saved yet
func (s *SQLiteStore) LoadDocument(ctx context.Context, lessonID string) (*models.LessonUIState, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	var raw sql.NullString
	err = db.QueryRowContext(ctx, `SELECT ui_schema FROM lessons WHERE id = ?`, lessonID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return models.NewLessonUIState(lessonID), nil
	}

	var state models.LessonUIState
	if err := json.Unmarshal([]byte(raw.String), &state); err != nil {
		return nil, fmt.Errorf("failed to decode document for lesson %s: %w", lessonID, err)
	}
	if state.LessonID == "" {
		state.LessonID = lessonID
	}
	if state.Layout.Order == nil {
		state.Layout.Order = []string{}
	}
	if state.Layout.Pinned == nil {
		state.Layout.Pinned = []string{}
	}
	if state.Blocks == nil {
		state.Blocks = models.BlockMap{}
	}
	return &state, nil
}

// SaveDocument overwrites the stored document
func (s *SQLiteStore) SaveDocument(ctx context.Context, lessonID string, state *models.LessonUIState) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE lessons SET ui_schema = ?, updated_at = ? WHERE id = ?`,
		string(raw), s.now().UTC().UnixMilli(), lessonID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// LoadTranscript returns the chat messages of a lesson in order
func (s *SQLiteStore) LoadTranscript(ctx context.Context, lessonID string) ([]models.ChatMessage, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	var exists int
	var raw sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT 1, c.messages FROM lessons l LEFT JOIN chats c ON c.lesson_id = l.id WHERE l.id = ?`,
		lessonID,
	).Scan(&exists, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	transcript := []models.ChatMessage{}
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return transcript, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &transcript); err != nil {
		return nil, fmt.Errorf("failed to decode transcript for lesson %s: %w", lessonID, err)
	}
	return transcript, nil
}

// SaveTranscript overwrites the stored transcript
func (s *SQLiteStore) SaveTranscript(ctx context.Context, lessonID string, transcript []models.ChatMessage) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}

	if transcript == nil {
		transcript = []models.ChatMessage{}
	}
	raw, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	now := s.now().UTC().UnixMilli()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE lessons SET updated_at = ? WHERE id = ?`, now, lessonID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chats(lesson_id, messages, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(lesson_id) DO UPDATE SET
		   messages=excluded.messages,
		   updated_at=excluded.updated_at`,
		lessonID, string(raw), now,
	); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (Lesson, error) {
	var lesson Lesson
	var createdAt, updatedAt int64
	if err := row.Scan(&lesson.ID, &lesson.Title, &createdAt, &updatedAt); err != nil {
		return Lesson{}, err
	}
	lesson.CreatedAt = time.UnixMilli(createdAt).UTC()
	lesson.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return lesson, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func defaultIfEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
