package memory

import (
	"context"
	"errors"
	"testing"

	"pocket/internal/core"
	"pocket/internal/gateway"
)

func TestLoadAbsence(t *testing.T) {
	g := New()
	snap, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected absence, got %+v", snap)
	}
}

func TestSaveThenLoad(t *testing.T) {
	g := New()
	ctx := context.Background()
	in := core.Snapshot{Categories: core.DefaultCategories()}
	if err := g.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out == nil || len(out.Categories) != 7 {
		t.Fatalf("unexpected snapshot: %+v", out)
	}
}

func TestFailWith(t *testing.T) {
	g := New()
	cause := errors.New("medium gone")
	g.FailWith(cause)

	err := g.Save(context.Background(), core.Snapshot{})
	var se *gateway.StorageError
	if !errors.As(err, &se) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped StorageError, got %v", err)
	}

	g.FailWith(nil)
	if err := g.Save(context.Background(), core.Snapshot{}); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}
