// Package storage is the durable snapshot boundary. The store keeps an
// eventually-consistent copy of every session for historical queries and
// crash recovery of the record; the in-memory session stays the source
// of truth for live play.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gamehub/internal/game"
)

// ErrNotFound is returned when no snapshot exists for a game ID.
var ErrNotFound = errors.New("storage: snapshot not found")

// Record is the persisted form of a session snapshot. GameType and
// Status are duplicated outside the snapshot document so the store can
// filter on them.
type Record struct {
	GameID    string
	GameType  string
	Status    game.Status
	Snapshot  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows a snapshot listing. Zero values match everything.
type Filter struct {
	GameType string
	Status   game.Status
}

// Store is a durable key-value upsert for session snapshots, keyed by
// game ID. SaveSnapshot has create-or-replace semantics, never a
// partial update.
type Store interface {
	SaveSnapshot(ctx context.Context, rec Record) error
	GetSnapshot(ctx context.Context, gameID string) (Record, error)

	// ListSnapshots returns matching records, newest first.
	ListSnapshots(ctx context.Context, f Filter) ([]Record, error)

	Close(ctx context.Context) error
}
