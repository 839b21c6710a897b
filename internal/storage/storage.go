// Package storage defines the Storage interface: the contract a
// persistence backend satisfies so the collection survives restarts.
//
// WHY SNAPSHOTS?
// ──────────────
// The collection is owned in memory and replaced wholesale by sort and
// import, so row-level CRUD against a database would only mirror what the
// store already does. The backend instead saves and loads the whole
// collection, in order, as one unit:
//
//   - Autosave = SaveSnapshot on a ticker and once more on shutdown.
//   - Startup  = LoadSnapshot, then collection.Store.Restore.
//
// Tests and alternative backends only need to implement three methods.
package storage

import (
	"context"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Storage persists the collection as an ordered snapshot.
type Storage interface {
	// SaveSnapshot replaces whatever was saved before with records, in
	// order. Either the whole snapshot is written or nothing changes.
	SaveSnapshot(ctx context.Context, records []types.Record) error

	// LoadSnapshot returns the last saved snapshot in its saved order.
	// It returns an empty slice (not nil) when nothing was saved yet.
	LoadSnapshot(ctx context.Context) ([]types.Record, error)

	// Close releases the backend.
	Close() error
}
