package store

import (
	"time"

	"github.com/jpalmerr/syncboard/table"
)

// Snapshot is a complete, published table.
//
// Snapshot is the storage representation of a rendered table, optimized for
// JSON serialization (used by the REST API) and for the terminal UI.
type Snapshot struct {
	// Name is the table name ("devices", "files").
	Name string `json:"name"`

	// Rows are the rendered rows in response order.
	Rows []table.Row `json:"rows"`

	// UpdatedAt is when the table was last published. Zero if it never was.
	UpdatedAt time.Time `json:"updated_at"`

	// Version increments on every publish, starting at 1.
	Version uint64 `json:"version"`
}

// Store defines the interface for reading and subscribing to rendered tables.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Get returns the latest snapshot of the named table.
	// The second result is false for an unknown name.
	Get(name string) (Snapshot, bool)

	// GetAll returns the latest snapshot of every table, ordered by name.
	GetAll() []Snapshot

	// Subscribe returns a channel that receives every published snapshot.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)
}
