// Package store provides persistence for named tape snapshots.
package store

import (
	"time"

	"nickandperla.net/bfi/internal/tape"
)

// Snapshot is a saved copy of a session's tape and cursor.
type Snapshot struct {
	Name    string
	Session string // Id of the session that saved it
	Cursor  int
	Cells   []tape.Cell
	Saved   time.Time
}

// Store is the interface for snapshot persistence.
type Store interface {
	// Get retrieves a snapshot by name. Returns nil if not found.
	Get(name string) (*Snapshot, error)
	// Put stores a snapshot under its name, overwriting if it exists.
	Put(s *Snapshot) error
	// Delete removes a snapshot by name.
	Delete(name string) error
	// List returns all snapshot names in sorted order.
	List() ([]string, error)
	// Close releases resources.
	Close() error
}
