// Package saver decouples mutations from the persistence medium. The
// store hands every snapshot to the queue and returns immediately; a
// single background goroutine writes to the real gateway. Snapshots are
// coalesced to the newest one, so a slow medium can never apply an older
// state on top of a newer one.
package saver

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"pocket/internal/core"
	"pocket/internal/gateway"
)

// Queue is an order-preserving, latest-wins save queue. It implements
// gateway.Saver so it can be injected into the store in place of a
// synchronous gateway.
type Queue struct {
	gw      gateway.Saver
	onError func(error)

	mu      sync.Mutex
	pending *core.Snapshot
	closed  bool

	wake chan struct{}
	done chan struct{}
}

var _ gateway.Saver = (*Queue)(nil)

// ErrClosed is returned by Save after Close.
var ErrClosed = errors.New("save queue closed")

// New starts the background writer. onError receives every failed save so
// the caller can warn the user; it may be nil, in which case failures are
// only logged.
func New(gw gateway.Saver, onError func(error)) *Queue {
	q := &Queue{
		gw:      gw,
		onError: onError,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Save enqueues the snapshot and returns immediately. A snapshot already
// waiting is replaced; only the newest state ever reaches the medium.
func (q *Queue) Save(_ context.Context, snap core.Snapshot) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.pending = &snap

	// The wake signal stays under the mutex so it can never race the
	// channel close in Close.
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close flushes any pending snapshot and stops the writer. The context
// bounds how long the final flush may take.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.wake)
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for range q.wake {
		q.flush()
	}
	// Drain whatever arrived between the last wake and Close.
	q.flush()
}

func (q *Queue) flush() {
	for {
		q.mu.Lock()
		snap := q.pending
		q.pending = nil
		q.mu.Unlock()
		if snap == nil {
			return
		}

		if err := q.gw.Save(context.Background(), *snap); err != nil {
			slog.Error("Background save failed", "error", err)
			if q.onError != nil {
				q.onError(err)
			}
		}
	}
}
