package eventstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens a SQLite-backed event store.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, storeError("open", err).
				WithContext("path", dbPath).
				Build()
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storeError("open", err).
			WithContext("path", dbPath).
			Build()
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, storeError("open", err).WithContext("path", dbPath).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_build_id ON events(build_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new event to the store.
func (s *SQLiteStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (build_id, event_type, timestamp, payload) VALUES (?, ?, ?, ?)",
		event.BuildID, string(event.Type), ts.UnixNano(), event.Payload,
	)
	if err != nil {
		return storeError("append", err).
			WithContext("build_id", event.BuildID).
			Build()
	}
	return nil
}

// GetByBuildID retrieves all events for a specific build.
func (s *SQLiteStore) GetByBuildID(ctx context.Context, buildID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, event_type, timestamp, payload FROM events WHERE build_id = ? ORDER BY id",
		buildID,
	)
	if err != nil {
		return nil, storeError("query", err).Build()
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

// Summaries projects the most recent limit builds, newest first. A
// non-positive limit returns every build.
func (s *SQLiteStore) Summaries(ctx context.Context, limit int) ([]BuildSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, build_id, event_type, timestamp, payload FROM events
		WHERE build_id IN (
			SELECT build_id FROM events GROUP BY build_id ORDER BY MIN(id) DESC LIMIT ?
		) ORDER BY id`
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, storeError("query", err).Build()
	}
	defer func() { _ = rows.Close() }()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	return Project(events), nil
}

// Summary projects a single build.
func (s *SQLiteStore) Summary(ctx context.Context, buildID string) (BuildSummary, error) {
	events, err := s.GetByBuildID(ctx, buildID)
	if err != nil {
		return BuildSummary{}, err
	}
	if len(events) == 0 {
		return BuildSummary{}, ErrBuildNotFound
	}
	return Project(events)[0], nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			e    Event
			typ  string
			nano int64
		)
		if err := rows.Scan(&e.ID, &e.BuildID, &typ, &nano, &e.Payload); err != nil {
			return nil, storeError("query", err).WithContext("step", "scan").Build()
		}
		e.Type = EventType(typ)
		e.Timestamp = time.Unix(0, nano).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("query", err).WithContext("step", "iterate").Build()
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
