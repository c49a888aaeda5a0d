// Package storage defines the snapshot persistence interface for the
// entity graph.
//
// A snapshot is the full graph of one completed batch run plus its run
// metadata. Snapshots serve two purposes: downstream consumers read the
// terminal snapshot, and a later run loads it to resume ID allocation
// above the identifiers already issued.
package storage

import (
	"context"
	"errors"
	"time"

	"bibliograph/internal/graph"
)

// ErrNoSnapshot is returned by Load when the store has never been saved
// to. Callers treat it as "start from an empty graph".
var ErrNoSnapshot = errors.New("storage: no snapshot present")

// ErrInvalidInput indicates invalid parameters were provided.
var ErrInvalidInput = errors.New("storage: invalid input")

// RunInfo is the metadata recorded alongside a snapshot.
type RunInfo struct {
	RunID         string    // batch run identifier (UUID)
	CreatedAt     time.Time // when the snapshot was written
	EntityCount   int
	RelationCount int
	WarningCount  int // data-quality warnings collected during the run
}

// SnapshotStore persists and restores entity-graph snapshots.
type SnapshotStore interface {
	// Load restores the most recent snapshot and its run metadata.
	// Returns ErrNoSnapshot when nothing has been saved yet.
	Load(ctx context.Context) (*graph.Store, *RunInfo, error)

	// Save replaces the stored snapshot with g and records info.
	Save(ctx context.Context, g *graph.Store, info RunInfo) error

	// Close releases the underlying database handle.
	Close() error
}
