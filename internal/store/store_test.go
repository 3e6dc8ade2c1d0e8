package store

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"pocket/internal/core"
	"pocket/internal/gateway"
)

type fakeSaver struct {
	mu    sync.Mutex
	saves []core.Snapshot
	fail  error
}

func (f *fakeSaver) Save(_ context.Context, snap core.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.saves = append(f.saves, snap)
	return nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeSaver) last() core.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[len(f.saves)-1]
}

func newTestStore(saver gateway.Saver) *Store {
	s := New(nil, saver)
	s.now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestNewSeedsDefaultCategories(t *testing.T) {
	s := New(nil, nil)
	cats := s.Categories()
	if len(cats) != 7 {
		t.Fatalf("expected 7 seeded categories, got %d", len(cats))
	}
	if cats[0].Name != "Alimentação" || cats[6].Name != "Outros" {
		t.Fatalf("unexpected seed order: %q ... %q", cats[0].Name, cats[6].Name)
	}
}

func TestNewFromSnapshotDoesNotSeed(t *testing.T) {
	snap := &core.Snapshot{
		Expenses: []core.Expense{{ID: "e1", Name: "x", Category: "Outros"}},
	}
	s := New(snap, nil)
	if len(s.Categories()) != 0 {
		t.Fatalf("persisted empty category list must stay empty")
	}
	if len(s.Expenses()) != 1 {
		t.Fatalf("expected hydrated expense")
	}
}

func TestAddAccountGeneratesIDAndCreatedAt(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestStore(saver)

	acc, err := s.AddAccount(context.Background(), core.AccountInput{
		Name: "Rent", Amount: core.Money{Cents: 100000}, DueDate: core.NewDate(2024, 2, 1), Category: "Moradia",
	})
	if err != nil {
		t.Fatalf("add account: %v", err)
	}
	if len(acc.ID) != 21 {
		t.Fatalf("expected generated 21-char id, got %q", acc.ID)
	}
	if acc.CreatedAt.IsZero() {
		t.Fatalf("createdAt not stamped")
	}
	if acc.Paid {
		t.Fatalf("paid must default to false")
	}
	if saver.count() != 1 {
		t.Fatalf("expected one save, got %d", saver.count())
	}
	if got := saver.last().Accounts; len(got) != 1 || got[0].ID != acc.ID {
		t.Fatalf("saved snapshot does not reflect the mutation")
	}
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		if _, err := s.AddExpense(ctx, core.ExpenseInput{Name: n, Date: core.NewDate(2024, 1, 5), Category: "Outros"}); err != nil {
			t.Fatalf("add %q: %v", n, err)
		}
	}
	got := s.Expenses()
	for i, n := range names {
		if got[i].Name != n {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Name, n)
		}
	}
}

func TestUpdateAccountPartialFields(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	acc, _ := s.AddAccount(ctx, core.AccountInput{
		Name: "Rent", Amount: core.Money{Cents: 100000}, DueDate: core.NewDate(2024, 2, 1), Category: "Moradia",
	})

	newName := "Rent 2024"
	if err := s.UpdateAccount(ctx, acc.ID, AccountPatch{Name: &newName}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := s.Accounts()[0]
	if got.Name != "Rent 2024" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.Amount.Cents != 100000 || got.Category != "Moradia" || got.ID != acc.ID || !got.CreatedAt.Equal(acc.CreatedAt) {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
}

func TestPatchValidate(t *testing.T) {
	str := func(s string) *string { return &s }
	money := func(c int64) *core.Money { return &core.Money{Cents: c} }
	date := core.NewDate(2024, 2, 1)

	cases := []struct {
		name  string
		patch interface{ Validate() error }
		want  error
	}{
		{"empty account patch", AccountPatch{}, nil},
		{"valid account patch", AccountPatch{Name: str("Rent"), Amount: money(100), DueDate: &date, Category: str("Moradia")}, nil},
		{"blank account name", AccountPatch{Name: str("  ")}, core.ErrEmptyName},
		{"negative account amount", AccountPatch{Amount: money(-5000)}, core.ErrInvalidAmount},
		{"zero account amount", AccountPatch{Amount: money(0)}, nil},
		{"blank account category", AccountPatch{Category: str("")}, core.ErrEmptyCategory},
		{"blank expense name", ExpensePatch{Name: str("")}, core.ErrEmptyName},
		{"negative expense amount", ExpensePatch{Amount: money(-1)}, core.ErrInvalidAmount},
		{"blank expense category", ExpensePatch{Category: str(" ")}, core.ErrEmptyCategory},
		{"empty category patch", CategoryPatch{}, nil},
		{"blank category name", CategoryPatch{Name: str(" ")}, core.ErrEmptyName},
		{"valid category color", CategoryPatch{Color: str("#1A2b3C")}, nil},
		{"bad category color", CategoryPatch{Color: str("red")}, core.ErrInvalidColor},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.patch.Validate()
			if c.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.want != nil && !errors.Is(err, c.want) {
				t.Fatalf("got %v, want %v", err, c.want)
			}
		})
	}
}

func TestUpdateEmptyPatchIsNoOp(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	acc, _ := s.AddAccount(ctx, core.AccountInput{
		Name: "Rent", Amount: core.Money{Cents: 1}, DueDate: core.NewDate(2024, 2, 1), Category: "Moradia",
	})
	before := s.Accounts()[0]
	if err := s.UpdateAccount(ctx, acc.ID, AccountPatch{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	after := s.Accounts()[0]
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("empty patch changed the entity: %+v != %+v", before, after)
	}
}

func TestUpdateMissingIDIsSilentNoOp(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestStore(saver)
	name := "x"
	if err := s.UpdateAccount(context.Background(), "nope", AccountPatch{Name: &name}); err != nil {
		t.Fatalf("missing id must not error, got %v", err)
	}
	if len(s.Accounts()) != 0 {
		t.Fatalf("collections must stay empty")
	}
	if saver.count() != 0 {
		t.Fatalf("a no-op must not persist")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	exp, _ := s.AddExpense(ctx, core.ExpenseInput{Name: "Lunch", Date: core.NewDate(2024, 1, 5), Category: "Outros"})

	if err := s.DeleteExpense(ctx, exp.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.DeleteExpense(ctx, exp.ID); err != nil {
		t.Fatalf("second delete must be a no-op, got %v", err)
	}
	if len(s.Expenses()) != 0 {
		t.Fatalf("expense not removed")
	}
}

func TestToggleAccountPaidIsSelfInverse(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	acc, _ := s.AddAccount(ctx, core.AccountInput{
		Name: "Rent", Amount: core.Money{Cents: 100000}, DueDate: core.NewDate(2024, 2, 1), Category: "Moradia",
	})
	before := s.Accounts()[0]

	if err := s.ToggleAccountPaid(ctx, acc.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !s.Accounts()[0].Paid {
		t.Fatalf("expected paid after first toggle")
	}
	if err := s.ToggleAccountPaid(ctx, acc.ID); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	after := s.Accounts()[0]
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("double toggle must restore the entity: %+v != %+v", before, after)
	}

	if err := s.ToggleAccountPaid(ctx, "missing"); err != nil {
		t.Fatalf("toggle on missing id must be a no-op, got %v", err)
	}
}

func TestDeleteCategoryKeepsReferences(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	cat, _ := s.AddCategory(ctx, core.CategoryInput{Name: "Pets", Color: "#112233"})
	_, _ = s.AddExpense(ctx, core.ExpenseInput{Name: "Vet", Amount: core.Money{Cents: 5000}, Date: core.NewDate(2024, 1, 5), Category: "Pets"})

	if err := s.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	exp := s.Expenses()[0]
	if exp.Category != "Pets" {
		t.Fatalf("deleting a category must not re-point records, got %q", exp.Category)
	}
	if got := s.ResolveColor("Pets"); got != core.FallbackColor {
		t.Fatalf("expected fallback color, got %q", got)
	}
}

func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	saver := &fakeSaver{fail: &gateway.StorageError{Op: "save", Err: errors.New("disk full")}}
	s := newTestStore(saver)

	_, err := s.AddExpense(context.Background(), core.ExpenseInput{Name: "Lunch", Amount: core.Money{Cents: 2000}, Date: core.NewDate(2024, 1, 5), Category: "Outros"})
	var se *gateway.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if len(s.Expenses()) != 1 {
		t.Fatalf("in-memory mutation must survive a failed save")
	}

	// The store stays usable once the medium recovers.
	saver.fail = nil
	if _, err := s.AddExpense(context.Background(), core.ExpenseInput{Name: "Bus", Amount: core.Money{Cents: 1000}, Date: core.NewDate(2024, 1, 5), Category: "Outros"}); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if got := saver.last().Expenses; len(got) != 2 {
		t.Fatalf("recovered save must carry the full state, got %d expenses", len(got))
	}
}

func TestStaleSaveNeverOverwritesNewerState(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestStore(saver)
	ctx := context.Background()

	s.mu.Lock()
	_, seqOld := s.snapshotLocked()
	oldSnap := s.copyLocked()
	s.mu.Unlock()

	if _, err := s.AddExpense(ctx, core.ExpenseInput{Name: "Lunch", Date: core.NewDate(2024, 1, 5), Category: "Outros"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A delayed completion of the earlier mutation's save must be dropped.
	if err := s.persist(ctx, oldSnap, seqOld); err != nil {
		t.Fatalf("stale persist: %v", err)
	}
	if got := saver.last().Expenses; len(got) != 1 {
		t.Fatalf("stale save clobbered newer state: %d expenses persisted", len(got))
	}
}

func TestConcurrentMutationsAndReads(t *testing.T) {
	s := newTestStore(&fakeSaver{})
	ctx := context.Background()
	acc, _ := s.AddAccount(ctx, core.AccountInput{Name: "Rent", Amount: core.Money{Cents: 100}, DueDate: core.NewDate(2024, 2, 1), Category: "Moradia"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.ToggleAccountPaid(ctx, acc.ID)
				totals := s.AccountTotals()
				if totals.Total.Cents != totals.Paid.Cents+totals.Pending.Cents {
					t.Errorf("inconsistent totals: %+v", totals)
					return
				}
				_ = s.ExpensesByCategory()
			}
		}()
	}
	wg.Wait()
}
