package saver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pocket/internal/core"
	"pocket/internal/gateway/memory"
)

type slowGateway struct {
	mu    sync.Mutex
	delay time.Duration
	saves []core.Snapshot
	fail  error
}

func (g *slowGateway) Save(_ context.Context, snap core.Snapshot) error {
	time.Sleep(g.delay)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.saves = append(g.saves, snap)
	return nil
}

func (g *slowGateway) saved() []core.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]core.Snapshot(nil), g.saves...)
}

func snapWithExpenses(n int) core.Snapshot {
	snap := core.Snapshot{}
	for i := 0; i < n; i++ {
		snap.Expenses = append(snap.Expenses, core.Expense{ID: core.NewID()})
	}
	return snap
}

func TestFlushOnClose(t *testing.T) {
	gw := memory.New()
	q := New(gw, nil)

	if err := q.Save(context.Background(), snapWithExpenses(3)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := q.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	out, err := gw.Load(context.Background())
	if err != nil || out == nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.Expenses) != 3 {
		t.Fatalf("pending snapshot not flushed: %d expenses", len(out.Expenses))
	}
}

func TestCoalescesToNewestState(t *testing.T) {
	gw := &slowGateway{delay: 20 * time.Millisecond}
	q := New(gw, nil)
	ctx := context.Background()

	// Enqueue a burst faster than the medium can absorb it.
	for n := 1; n <= 10; n++ {
		if err := q.Save(ctx, snapWithExpenses(n)); err != nil {
			t.Fatalf("save %d: %v", n, err)
		}
	}
	if err := q.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	saves := gw.saved()
	if len(saves) == 0 {
		t.Fatalf("nothing persisted")
	}
	if got := len(saves[len(saves)-1].Expenses); got != 10 {
		t.Fatalf("final persisted state must be the newest, got %d expenses", got)
	}
	for i := 1; i < len(saves); i++ {
		if len(saves[i].Expenses) < len(saves[i-1].Expenses) {
			t.Fatalf("older state persisted after newer one: %d then %d",
				len(saves[i-1].Expenses), len(saves[i].Expenses))
		}
	}
}

func TestFailuresReachTheErrorCallback(t *testing.T) {
	cause := errors.New("medium gone")
	gw := &slowGateway{fail: cause}

	errCh := make(chan error, 1)
	q := New(gw, func(err error) { errCh <- err })

	if err := q.Save(context.Background(), snapWithExpenses(1)); err != nil {
		t.Fatalf("save must not fail synchronously: %v", err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, cause) {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("error callback never invoked")
	}
	_ = q.Close(context.Background())
}

func TestConcurrentSaveAndClose(t *testing.T) {
	// Saves racing Close must either enqueue or report ErrClosed; a late
	// wake signal must never hit the already-closed channel.
	for i := 0; i < 200; i++ {
		q := New(memory.New(), nil)
		start := make(chan struct{})

		var wg sync.WaitGroup
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for n := 0; n < 20; n++ {
					if err := q.Save(context.Background(), snapWithExpenses(1)); err != nil {
						if !errors.Is(err, ErrClosed) {
							t.Errorf("save: %v", err)
						}
						return
					}
				}
			}()
		}

		close(start)
		if err := q.Close(context.Background()); err != nil {
			t.Fatalf("close: %v", err)
		}
		wg.Wait()
	}
}

func TestSaveAfterClose(t *testing.T) {
	q := New(memory.New(), nil)
	if err := q.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Save(context.Background(), core.Snapshot{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := q.Close(context.Background()); err != nil {
		t.Fatalf("second close must be a no-op, got %v", err)
	}
}
