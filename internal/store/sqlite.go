package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const recordColumns = "id, title, section, content, category, tags, created_at, updated_at"

// SQLiteStore implements Store on top of a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the content database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug("Opened content store", "path", dbPath)

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListAll returns every record ordered by section, then title.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]Record, error) {
	return s.query(ctx, "SELECT "+recordColumns+" FROM content_documents ORDER BY section, title, id")
}

// ListBySection returns the records of one section ordered by title.
func (s *SQLiteStore) ListBySection(ctx context.Context, section string) ([]Record, error) {
	return s.query(ctx, "SELECT "+recordColumns+" FROM content_documents WHERE section = ? ORDER BY title, id", section)
}

// ListByCategory returns the records with the given category.
func (s *SQLiteStore) ListByCategory(ctx context.Context, category string) ([]Record, error) {
	return s.query(ctx, "SELECT "+recordColumns+" FROM content_documents WHERE category = ? ORDER BY section, title, id", category)
}

// Search does a case-insensitive substring match over title, content and tags.
func (s *SQLiteStore) Search(ctx context.Context, term string) ([]Record, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return s.query(ctx, `
		SELECT `+recordColumns+` FROM content_documents
		WHERE lower(title) LIKE ? ESCAPE '\'
		   OR lower(content) LIKE ? ESCAPE '\'
		   OR lower(tags) LIKE ? ESCAPE '\'
		ORDER BY section, title, id
	`, pattern, pattern, pattern)
}

// Sections returns the distinct section names in sorted order.
func (s *SQLiteStore) Sections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT section FROM content_documents ORDER BY section")
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	var sections []string
	for rows.Next() {
		var section string
		if err := rows.Scan(&section); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}

// Count returns the number of records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Get returns a record by id, or nil if it does not exist.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM content_documents WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &rec, nil
}

// Create inserts a record. An empty id is replaced by a generated one.
func (s *SQLiteStore) Create(ctx context.Context, rec Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := insertRecord(ctx, s.db, rec); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	return &rec, nil
}

// Update overwrites the editable fields of an existing record.
func (s *SQLiteStore) Update(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `
		UPDATE content_documents
		SET title = ?, section = ?, content = ?, category = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, rec.Title, rec.Section, rec.Content, rec.Category, rec.Tags, now, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, rec.ID)
	}
	return nil
}

// Delete removes a record. Deleting a missing id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM content_documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// ReplaceAll deletes every record and inserts recs in one transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM content_documents"); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	for _, rec := range recs {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if err := insertRecord(ctx, tx, rec); err != nil {
			return fmt.Errorf("failed to insert %q: %w", rec.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("Replaced content records", "count", len(recs))
	return nil
}

// Meta returns a bookkeeping value, or "" if unset.
func (s *SQLiteStore) Meta(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read meta %q: %w", key, err)
	}
	return value, nil
}

// SetMeta stores a bookkeeping value.
func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write meta %q: %w", key, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecord(ctx context.Context, db execer, rec Record) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO content_documents (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Title, rec.Section, rec.Content, rec.Category, rec.Tags,
		rec.CreatedAt.Format(time.RFC3339), rec.UpdatedAt.Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.Title, &rec.Section, &rec.Content, &rec.Category, &rec.Tags, &createdAt, &updatedAt); err != nil {
		return Record{}, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return rec, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
