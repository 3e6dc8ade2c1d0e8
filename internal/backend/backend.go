// Package backend turns the configured backend name into a concrete
// persistence gateway.
package backend

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pocket/internal/config"
	"pocket/internal/gateway"
	"pocket/internal/gateway/file"
	"pocket/internal/gateway/memory"
	"pocket/internal/gateway/sqlite"
)

type Type string

const (
	Memory Type = "memory"
	File   Type = "file"
	SQLite Type = "sqlite"
)

func (t Type) IsValid() bool {
	switch t {
	case Memory, File, SQLite:
		return true
	default:
		return false
	}
}

// Open builds the persistence gateway selected by the configuration.
// The caller owns the returned gateway and must Close it.
func Open(cfg *config.Config, logger *slog.Logger) (gateway.Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.Backend)
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	switch t {
	case Memory:
		logger.Info("Using in-memory backend, state will not survive a restart")
		return memory.New(), nil

	case File:
		if err := ensureParentDir(cfg.StateFilePath); err != nil {
			return nil, fmt.Errorf("prepare state file directory: %w", err)
		}
		gw, err := file.New(cfg.StateFilePath)
		if err != nil {
			return nil, fmt.Errorf("open file backend: %w", err)
		}
		logger.Info("Using file backend", "path", cfg.StateFilePath)
		return gw, nil

	case SQLite:
		if err := ensureParentDir(cfg.SQLiteDBPath); err != nil {
			return nil, fmt.Errorf("prepare database directory: %w", err)
		}
		gw, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		logger.Info("Using sqlite backend", "path", cfg.SQLiteDBPath)
		return gw, nil
	}

	return nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
