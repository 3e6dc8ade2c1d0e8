package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocket/internal/amqp"
	"pocket/internal/core"
	gwmemory "pocket/internal/gateway/memory"
)

func testSnapshot() *core.Snapshot {
	return &core.Snapshot{
		Accounts: []core.Account{
			{
				ID:        "acc-1",
				Name:      "Rent",
				Amount:    core.Money{Cents: 100000},
				DueDate:   core.NewDate(2026, 3, 5),
				Category:  "3",
				Paid:      false,
				CreatedAt: time.Date(2026, time.February, 1, 10, 0, 0, 0, time.UTC),
			},
		},
		Categories: core.DefaultCategories(),
	}
}

func TestMirrorNowCopiesState(t *testing.T) {
	source := gwmemory.NewWithSnapshot(*testSnapshot())
	mirror := gwmemory.New()
	w := NewMirrorWorker(source, mirror)

	if err := w.MirrorNow(context.Background()); err != nil {
		t.Fatalf("MirrorNow() error = %v", err)
	}

	got, err := mirror.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("mirror holds no state after MirrorNow")
	}
	if len(got.Accounts) != 1 || got.Accounts[0].Name != "Rent" {
		t.Errorf("mirrored accounts = %+v, want the Rent account", got.Accounts)
	}
	if len(got.Categories) != 7 {
		t.Errorf("mirrored categories = %d, want 7", len(got.Categories))
	}
}

func TestMirrorNowAbsentSourceWritesEmptySnapshot(t *testing.T) {
	source := gwmemory.New()
	mirror := gwmemory.New()
	w := NewMirrorWorker(source, mirror)

	if err := w.MirrorNow(context.Background()); err != nil {
		t.Fatalf("MirrorNow() error = %v", err)
	}

	got, err := mirror.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("mirror should hold an empty snapshot, not absence")
	}
	if len(got.Accounts) != 0 || len(got.Expenses) != 0 || len(got.Categories) != 0 {
		t.Errorf("mirrored snapshot = %+v, want empty", got)
	}
}

func TestHandleMutationMirrors(t *testing.T) {
	source := gwmemory.NewWithSnapshot(*testSnapshot())
	mirror := gwmemory.New()
	w := NewMirrorWorker(source, mirror)

	msg := &amqp.MutationMessage{
		Entity:    amqp.EntityAccount,
		Op:        amqp.OpToggle,
		ID:        "acc-1",
		Timestamp: time.Now().UTC(),
	}
	if err := w.HandleMutation(context.Background(), msg); err != nil {
		t.Fatalf("HandleMutation() error = %v", err)
	}

	got, err := mirror.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil || len(got.Accounts) != 1 {
		t.Errorf("mirror state = %+v, want one account", got)
	}
}

func TestMirrorNowPropagatesLoadError(t *testing.T) {
	source := gwmemory.New()
	loadErr := errors.New("disk gone")
	source.FailWith(loadErr)
	w := NewMirrorWorker(source, gwmemory.New())

	if err := w.MirrorNow(context.Background()); !errors.Is(err, loadErr) {
		t.Errorf("MirrorNow() error = %v, want wrapping %v", err, loadErr)
	}
}

func TestMirrorNowPropagatesSaveError(t *testing.T) {
	mirror := gwmemory.New()
	saveErr := errors.New("sheet unavailable")
	mirror.FailWith(saveErr)
	w := NewMirrorWorker(gwmemory.NewWithSnapshot(*testSnapshot()), mirror)

	if err := w.MirrorNow(context.Background()); !errors.Is(err, saveErr) {
		t.Errorf("MirrorNow() error = %v, want wrapping %v", err, saveErr)
	}
}
