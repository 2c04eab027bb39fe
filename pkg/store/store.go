// Package store keeps the history of access decisions in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/djwarf/switchshell/pkg/access"
)

// Entry is a recorded decision
type Entry struct {
	ID string
	access.Decision
}

// Store manages decision persistence
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (or creates) the database at dbPath
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	connStr := dbPath + "?_journal_mode=DELETE&_synchronous=FULL"
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection; sqlite serializes writers anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		handle TEXT NOT NULL,
		app_id TEXT,
		title TEXT,
		outcome INTEGER NOT NULL,
		results TEXT,
		created DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_created ON decisions(created);
	CREATE INDEX IF NOT EXISTS idx_decisions_app ON decisions(app_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record implements access.Recorder
func (s *Store) Record(ctx context.Context, d access.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := json.Marshal(d.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if d.Created.IsZero() {
		d.Created = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decisions (id, handle, app_id, title, outcome, results, created)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), d.Handle, d.AppID, d.Title, int64(d.Outcome), string(results), d.Created.UTC())
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	return nil
}

// List returns the newest decisions first. A limit of zero or less returns
// everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, handle, app_id, title, outcome, results, created FROM decisions ORDER BY created DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ForApp returns the decisions made for one application, newest first
func (s *Store) ForApp(ctx context.Context, appID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, handle, app_id, title, outcome, results, created FROM decisions
		WHERE app_id = ? ORDER BY created DESC, rowid DESC`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes decisions older than before and reports how many went
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM decisions WHERE created < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var appID, title, results sql.NullString
	var outcome int64
	err := rows.Scan(&e.ID, &e.Handle, &appID, &title, &outcome, &results, &e.Created)
	if err != nil {
		return e, err
	}
	e.AppID = appID.String
	e.Title = title.String
	e.Outcome = access.Outcome(outcome)
	e.Results = map[string]string{}
	if results.Valid && results.String != "" {
		if err := json.Unmarshal([]byte(results.String), &e.Results); err != nil {
			return e, fmt.Errorf("failed to decode results of %s: %w", e.ID, err)
		}
	}
	return e, nil
}
