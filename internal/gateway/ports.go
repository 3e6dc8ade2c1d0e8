package gateway

import (
	"context"
	"fmt"

	"pocket/internal/core"
)

// Ports for outbound persistence adapters.
type (
	// Loader reads the persisted state at startup. A (nil, nil) return
	// means no state exists yet and the store should seed its defaults.
	Loader interface {
		Load(ctx context.Context) (*core.Snapshot, error)
	}

	// Saver persists the full current state after a mutation. A failure
	// is surfaced as *StorageError; the in-memory state stays
	// authoritative either way.
	Saver interface {
		Save(ctx context.Context, snap core.Snapshot) error
	}

	Gateway interface {
		Loader
		Saver
		Close() error
	}
)

// StorageError reports a persistence-medium failure. The mutation that
// triggered the save already succeeded in memory; callers should warn the
// user that durability was not achieved and carry on.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
