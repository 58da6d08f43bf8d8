// Package inbox keeps a local SQLite record of every contact enquiry the
// site accepted, along with whether it was delivered.
package inbox

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/conneroisu/coachsite/internal/errors"
	"github.com/conneroisu/coachsite/internal/mail"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// Status is the delivery state of an enquiry.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Entry is one stored enquiry.
type Entry struct {
	ID         string          `json:"id"`
	Submission mail.Submission `json:"submission"`
	Status     Status          `json:"status"`
	Error      string          `json:"error,omitempty"`
	ReceivedAt time.Time       `json:"receivedAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Store is a SQLite-backed enquiry log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the inbox database at path. ":memory:" keeps the
// inbox in memory.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to create inbox directory", path)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to open inbox", path)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to set WAL mode", path)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS enquiries (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			service TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			received_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS enquiries_status ON enquiries(status);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to create inbox schema", path)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a new pending enquiry and returns its id.
func (s *Store) Record(ctx context.Context, sub mail.Submission) (string, error) {
	// Make draws from a monotonic source, so ids from one process sort in
	// insertion order even within a millisecond.
	id := ulid.Make().String()
	now := s.now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enquiries (id, name, email, phone, service, message, status, received_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sub.Name, sub.Email, sub.Phone, sub.Service, sub.Message, string(StatusPending), now, now,
	)
	if err != nil {
		return "", errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to record enquiry", id)
	}
	return id, nil
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusSent, "")
}

// MarkFailed records a failed delivery and the reason.
func (s *Store) MarkFailed(ctx context.Context, id string, cause error) error {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return s.setStatus(ctx, id, StatusFailed, reason)
}

func (s *Store) setStatus(ctx context.Context, id string, status Status, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE enquiries SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), reason, s.now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to update enquiry", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFoundError(errors.ErrCodeInboxFailed, "enquiry not found").WithResource(id)
	}
	return nil
}

// Get returns one enquiry.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, service, message, status, error, received_at, updated_at
		 FROM enquiries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(errors.ErrCodeInboxFailed, "enquiry not found").WithResource(id)
	}
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to read enquiry", id)
	}
	return entry, nil
}

// List returns enquiries newest first. An empty status lists all of them.
func (s *Store) List(ctx context.Context, status Status) ([]Entry, error) {
	query := `SELECT id, name, email, phone, service, message, status, error, received_at, updated_at
		FROM enquiries`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to list enquiries", "")
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to read enquiry", "")
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeInboxFailed, "failed to list enquiries", "")
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var status, received, updated string
	err := row.Scan(
		&e.ID,
		&e.Submission.Name,
		&e.Submission.Email,
		&e.Submission.Phone,
		&e.Submission.Service,
		&e.Submission.Message,
		&status,
		&e.Error,
		&received,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	e.Status = Status(status)
	e.ReceivedAt, _ = time.Parse(time.RFC3339Nano, received)
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &e, nil
}
