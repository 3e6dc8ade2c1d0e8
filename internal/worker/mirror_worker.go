// Package worker mirrors the persisted state to a secondary medium.
// The worker reacts to mutation events from AMQP and re-reads the whole
// state through its own gateway, so a lost event costs nothing more than
// a delay until the next event or periodic pass.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"pocket/internal/amqp"
	"pocket/internal/core"
	"pocket/internal/gateway"
)

type MirrorWorker struct {
	source gateway.Loader
	mirror gateway.Saver
}

func NewMirrorWorker(source gateway.Loader, mirror gateway.Saver) *MirrorWorker {
	return &MirrorWorker{
		source: source,
		mirror: mirror,
	}
}

// HandleMutation processes a single mutation event by mirroring the
// current state.
func (w *MirrorWorker) HandleMutation(ctx context.Context, msg *amqp.MutationMessage) error {
	slog.InfoContext(ctx, "Processing mutation event",
		"entity", msg.Entity,
		"op", msg.Op,
		"id", msg.ID)

	return w.MirrorNow(ctx)
}

// MirrorNow reads the current state from the source gateway and writes
// it to the mirror. Absent source state mirrors as an empty snapshot.
func (w *MirrorWorker) MirrorNow(ctx context.Context) error {
	snap, err := w.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load current state: %w", err)
	}
	if snap == nil {
		snap = &core.Snapshot{}
	}

	if err := w.mirror.Save(ctx, *snap); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}

	slog.InfoContext(ctx, "State mirrored",
		"accounts", len(snap.Accounts),
		"expenses", len(snap.Expenses),
		"categories", len(snap.Categories))
	return nil
}
