// Package file persists the snapshot as a single JSON document on disk,
// the closest durable analogue to the original client's local storage.
// Writes go through a temp file and rename so a crash mid-save leaves the
// previous state intact.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pocket/internal/core"
	"pocket/internal/gateway"
)

type Gateway struct {
	path string
}

var _ gateway.Gateway = (*Gateway)(nil)

func New(path string) (*Gateway, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Gateway{path: path}, nil
}

func (g *Gateway) Load(_ context.Context) (*core.Snapshot, error) {
	data, err := os.ReadFile(g.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &gateway.StorageError{Op: "load", Err: err}
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &gateway.StorageError{Op: "load", Err: fmt.Errorf("decode state: %w", err)}
	}
	return &snap, nil
}

func (g *Gateway) Save(_ context.Context, snap core.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return &gateway.StorageError{Op: "save", Err: fmt.Errorf("encode state: %w", err)}
	}
	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &gateway.StorageError{Op: "save", Err: err}
	}
	if err := os.Rename(tmp, g.path); err != nil {
		return &gateway.StorageError{Op: "save", Err: err}
	}
	return nil
}

func (g *Gateway) Close() error {
	return nil
}
