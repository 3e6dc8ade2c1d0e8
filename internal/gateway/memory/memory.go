// Package memory is an in-process persistence gateway. It backs tests and
// the default development backend; nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"pocket/internal/core"
	"pocket/internal/gateway"
)

type Gateway struct {
	mu   sync.Mutex
	snap *core.Snapshot
	fail error
}

var _ gateway.Gateway = (*Gateway)(nil)

func New() *Gateway {
	return &Gateway{}
}

// NewWithSnapshot pre-populates the gateway, as if the state had been
// persisted by an earlier run.
func NewWithSnapshot(snap core.Snapshot) *Gateway {
	return &Gateway{snap: &snap}
}

// Load returns the last saved snapshot, or (nil, nil) when nothing was
// ever saved.
func (g *Gateway) Load(_ context.Context) (*core.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return nil, &gateway.StorageError{Op: "load", Err: g.fail}
	}
	if g.snap == nil {
		return nil, nil
	}
	snap := *g.snap
	return &snap, nil
}

func (g *Gateway) Save(_ context.Context, snap core.Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return &gateway.StorageError{Op: "save", Err: g.fail}
	}
	g.snap = &snap
	return nil
}

func (g *Gateway) Close() error {
	return nil
}

// FailWith makes every subsequent operation fail with the given cause,
// wrapped in a StorageError. Pass nil to recover the medium. Test hook.
func (g *Gateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = err
}
