// Package store persists pipeline results in SQLite. Every generation run is
// one record: created pending, then completed with its sanitized payload or
// failed with an error message.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Record kinds, one per pipeline operation that produces a persisted result.
const (
	KindAnalysis  = "analysis"
	KindScorecard = "scorecard"
	KindScaffold  = "scaffold"
	KindPortfolio = "portfolio"
	KindFitness   = "fitness"
)

// Record statuses.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Record is one persisted pipeline result.
type Record struct {
	ID           string         `json:"id"`
	Kind         string         `json:"kind"`
	AnalysisID   string         `json:"analysis_id,omitempty"`
	Status       string         `json:"status"`
	Payload      map[string]any `json:"payload,omitempty"`
	Error        string         `json:"error,omitempty"`
	ProcessingMS int64          `json:"processing_ms"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	analysis_id   TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	payload       TEXT NOT NULL DEFAULT '{}',
	error         TEXT NOT NULL DEFAULT '',
	processing_ms INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_kind ON records (kind, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_records_analysis ON records (analysis_id);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the schema
// exists. Use ":memory:" for an ephemeral store.
func Open(path string) (s *Store, err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open database at %s", path)
		return s, err
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(schemaSQL)
	if err != nil {
		db.Close()
		err = errors.Wrap(err, "failed to create schema")
		return s, err
	}

	s = &Store{db: db}
	return s, err
}

// Close closes the database.
func (s *Store) Close() (err error) {
	err = s.db.Close()
	return err
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) (err error) {
	err = s.db.PingContext(ctx)
	if err != nil {
		err = errors.Wrap(err, "database unreachable")
	}
	return err
}

// Create inserts a new pending record of the given kind and returns its id.
// analysisID links derived records back to the analysis run they came from;
// it may be empty.
func (s *Store) Create(ctx context.Context, kind, analysisID string) (id string, err error) {
	id = uuid.NewString()
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, kind, analysis_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, kind, analysisID, StatusPending, now, now)
	if err != nil {
		err = errors.Wrapf(err, "failed to create %s record", kind)
		return id, err
	}
	return id, err
}

// Complete marks a record complete and stores its payload.
func (s *Store) Complete(ctx context.Context, id string, payload map[string]any, processing time.Duration) (err error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		err = errors.Wrap(err, "failed to encode payload")
		return err
	}

	err = s.update(ctx,
		`UPDATE records SET status = ?, payload = ?, processing_ms = ?, updated_at = ? WHERE id = ?`,
		StatusComplete, string(encoded), processing.Milliseconds(), time.Now().UTC(), id)
	return err
}

// Fail marks a record failed with an error message.
func (s *Store) Fail(ctx context.Context, id string, message string, processing time.Duration) (err error) {
	err = s.update(ctx,
		`UPDATE records SET status = ?, error = ?, processing_ms = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, message, processing.Milliseconds(), time.Now().UTC(), id)
	return err
}

// update runs one UPDATE statement and maps zero affected rows to ErrNotFound.
func (s *Store) update(ctx context.Context, query string, args ...any) (err error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		err = errors.Wrap(err, "failed to update record")
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		err = errors.Wrap(err, "failed to read affected rows")
		return err
	}
	if affected == 0 {
		err = ErrNotFound
	}
	return err
}

// Get retrieves one record by id.
func (s *Store) Get(ctx context.Context, id string) (record Record, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, analysis_id, status, payload, error, processing_ms, created_at, updated_at
		 FROM records WHERE id = ?`, id)
	record, err = scanRecord(row.Scan)
	return record, err
}

// List retrieves records of one kind, newest first. kind may be empty to list
// all kinds.
func (s *Store) List(ctx context.Context, kind string, limit int) (records []Record, err error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, kind, analysis_id, status, payload, error, processing_ms, created_at, updated_at
		 FROM records`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = errors.Wrap(err, "failed to list records")
		return records, err
	}
	defer rows.Close()

	for rows.Next() {
		record, scanErr := scanRecord(rows.Scan)
		if scanErr != nil {
			err = scanErr
			return records, err
		}
		records = append(records, record)
	}
	err = errors.Wrap(rows.Err(), "failed to iterate records")
	return records, err
}

// Delete removes one record by id.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		err = errors.Wrap(err, "failed to delete record")
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		err = errors.Wrap(err, "failed to read affected rows")
		return err
	}
	if affected == 0 {
		err = ErrNotFound
	}
	return err
}

// scanRecord reads one row into a Record, decoding the payload JSON.
func scanRecord(scan func(dest ...any) error) (record Record, err error) {
	var payload string
	err = scan(&record.ID, &record.Kind, &record.AnalysisID, &record.Status,
		&payload, &record.Error, &record.ProcessingMS,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
			return record, err
		}
		err = errors.Wrap(err, "failed to scan record")
		return record, err
	}

	if payload != "" && payload != "{}" {
		decodeErr := json.Unmarshal([]byte(payload), &record.Payload)
		if decodeErr != nil {
			err = errors.Wrapf(decodeErr, "corrupt payload in record %s", record.ID)
			return record, err
		}
	}
	return record, err
}
