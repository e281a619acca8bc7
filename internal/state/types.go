// Package state persists the sync cursor: the last delivered post id and
// the resolved account id. The record is tiny and single-writer; drivers
// only need read-modify-write safety for one process at a time.
package state

import (
	"context"
	"errors"
	"time"
)

// Record is the persisted cursor.
//
// Zero values mean "not yet known". On the wire this is a JSON object with
// exactly two keys, last_id and user_id, each a string or null.
type Record struct {
	LastID string
	UserID string
}

// Store is the cursor persistence contract.
type Store interface {
	// Load returns the stored record; a missing record is an empty
	// Record, not an error.
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Close() error
}

// Config configures the store.
//
// Driver values:
//   - "file": JSON file written atomically (default)
//   - "sqlite": SQLite database file (build with -tags sqlite)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

var ErrUnknownDriver = errors.New("state: unknown driver")
