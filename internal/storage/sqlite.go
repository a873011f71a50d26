package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/leadsync/internal/apperr"
	"github.com/starford/leadsync/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS notes (
	email      TEXT PRIMARY KEY,
	note       TEXT NOT NULL,
	summary    TEXT,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite stores records in a single table, one row per email. Each save is
// a single upsert statement, so concurrent processes cannot interleave a
// read-modify-write.
type SQLite struct {
	conn *sql.DB
}

var _ Store = (*SQLite)(nil)

const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000"

// sqliteDSN appends the WAL and busy-timeout parameters to dsn, which may
// already carry a query string.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteParams
	}
	return dsn + "?" + sqliteParams
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping sqlite: %w", err)
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Save upserts the record for email.
func (s *SQLite) Save(ctx context.Context, email, note string, summary *string) (models.NoteRecord, error) {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO notes (email, note, summary, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			note       = excluded.note,
			summary    = excluded.summary,
			updated_at = excluded.updated_at
	`, email, note, nullString(summary), time.Now().UTC())
	if err != nil {
		return models.NoteRecord{}, fmt.Errorf("%w: upsert note: %w", apperr.ErrStorage, err)
	}
	return models.NoteRecord{Email: email, Note: note, Summary: summary}, nil
}

// Get returns the record for email.
func (s *SQLite) Get(ctx context.Context, email string) (models.NoteRecord, error) {
	var (
		e       entry
		summary sql.NullString
	)
	err := s.conn.QueryRowContext(ctx, `SELECT note, summary FROM notes WHERE email = ?`, email).
		Scan(&e.Note, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NoteRecord{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.NoteRecord{}, fmt.Errorf("%w: get note: %w", apperr.ErrStorage, err)
	}
	e.Summary = stringPtr(summary)
	return e.record(email), nil
}

// GetAll returns every record.
func (s *SQLite) GetAll(ctx context.Context) (map[string]models.NoteRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT email, note, summary FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("%w: list notes: %w", apperr.ErrStorage, err)
	}
	defer rows.Close()

	out := make(map[string]models.NoteRecord)
	for rows.Next() {
		var (
			email   string
			e       entry
			summary sql.NullString
		)
		if err := rows.Scan(&email, &e.Note, &summary); err != nil {
			return nil, fmt.Errorf("%w: scan note: %w", apperr.ErrStorage, err)
		}
		e.Summary = stringPtr(summary)
		out[email] = e.record(email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list notes: %w", apperr.ErrStorage, err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
