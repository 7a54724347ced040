// Package eventstore records build history as an append-only event log in
// SQLite and projects it into build summaries.
package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, event Event) error

	// GetByBuildID retrieves all events for a specific build, oldest first.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// Summaries projects the most recent builds, newest first.
	Summaries(ctx context.Context, limit int) ([]BuildSummary, error)

	// Close closes the store and releases resources.
	Close() error
}

// Event is one persisted build history record.
type Event struct {
	ID        int64
	BuildID   string
	Type      EventType
	Timestamp time.Time
	Payload   []byte
}
