// Package store implements the single source of truth for accounts,
// expenses and categories, together with the derived statistics computed
// from it. All mutations go through an exclusive surface here; reads
// always observe a consistent snapshot.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"pocket/internal/core"
	"pocket/internal/gateway"
)

// Store holds the three ordered collections and persists the full state
// through the injected saver after every successful mutation. A save
// failure does not roll back the in-memory change; it is returned to the
// caller so the UI layer can warn about lost durability.
type Store struct {
	mu         sync.RWMutex
	accounts   []core.Account
	expenses   []core.Expense
	categories []core.Category

	saver gateway.Saver

	// Save ordering: a delayed save of an older state must never clobber
	// a newer one once mutations overlap.
	saveMu   sync.Mutex
	seq      uint64
	savedSeq uint64

	now   func() time.Time
	newID func() string
}

// New builds a store from persisted state. A nil snapshot means nothing
// was persisted yet: collections start empty and the default category set
// is seeded. The saver may be nil, in which case mutations are memory-only.
func New(snap *core.Snapshot, saver gateway.Saver) *Store {
	s := &Store{
		saver: saver,
		now:   time.Now,
		newID: core.NewID,
	}
	if snap == nil {
		s.categories = core.DefaultCategories()
		return s
	}
	s.accounts = append(s.accounts, snap.Accounts...)
	s.expenses = append(s.expenses, snap.Expenses...)
	s.categories = append(s.categories, snap.Categories...)
	return s
}

// Patch types carry partial updates: nil fields are left untouched.
// Id and CreatedAt are never updatable.
type (
	AccountPatch struct {
		Name     *string     `json:"name"`
		Amount   *core.Money `json:"amount"`
		DueDate  *core.Date  `json:"dueDate"`
		Category *string     `json:"category"`
		Paid     *bool       `json:"paid"`
	}

	ExpensePatch struct {
		Name     *string     `json:"name"`
		Amount   *core.Money `json:"amount"`
		Date     *core.Date  `json:"date"`
		Category *string     `json:"category"`
	}

	CategoryPatch struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
)

// Patch validation mirrors the input rules field by field: a set field
// must satisfy the same constraint its full-input counterpart does.
// Callers check before applying; the store itself never validates.

func (p AccountPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return core.ErrEmptyName
	}
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	if p.DueDate != nil {
		if err := p.DueDate.Validate(); err != nil {
			return err
		}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return core.ErrEmptyCategory
	}
	return nil
}

func (p ExpensePatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return core.ErrEmptyName
	}
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if err := p.Date.Validate(); err != nil {
			return err
		}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return core.ErrEmptyCategory
	}
	return nil
}

func (p CategoryPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return core.ErrEmptyName
	}
	if p.Color != nil {
		return core.ValidateColor(*p.Color)
	}
	return nil
}

// AddAccount appends a new account with a generated id and creation
// timestamp. Input validation is the caller's duty; the store only
// guarantees structural consistency.
func (s *Store) AddAccount(ctx context.Context, in core.AccountInput) (core.Account, error) {
	s.mu.Lock()
	acc := core.Account{
		ID:        s.newID(),
		Name:      in.Name,
		Amount:    in.Amount,
		DueDate:   in.DueDate,
		Category:  in.Category,
		Paid:      in.Paid,
		CreatedAt: s.now(),
	}
	s.accounts = append(s.accounts, acc)
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return acc, s.persist(ctx, snap, seq)
}

// UpdateAccount replaces the supplied fields of the account with the given
// id. A missing id is silently ignored; double-clicks and stale UI actions
// must not turn into errors.
func (s *Store) UpdateAccount(ctx context.Context, id string, patch AccountPatch) error {
	s.mu.Lock()
	changed := false
	for i := range s.accounts {
		if s.accounts[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.accounts[i].Name = *patch.Name
		}
		if patch.Amount != nil {
			s.accounts[i].Amount = *patch.Amount
		}
		if patch.DueDate != nil {
			s.accounts[i].DueDate = *patch.DueDate
		}
		if patch.Category != nil {
			s.accounts[i].Category = *patch.Category
		}
		if patch.Paid != nil {
			s.accounts[i].Paid = *patch.Paid
		}
		changed = true
		break
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(ctx, snap, seq)
}

// DeleteAccount removes the account with the given id, if present.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	kept, removed := withoutAccount(s.accounts, id)
	if !removed {
		s.mu.Unlock()
		return nil
	}
	s.accounts = kept
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(ctx, snap, seq)
}

// ToggleAccountPaid flips the paid flag of the account with the given id.
// The read-modify-write runs under the write lock, so concurrent toggles
// cannot race each other.
func (s *Store) ToggleAccountPaid(ctx context.Context, id string) error {
	s.mu.Lock()
	changed := false
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].Paid = !s.accounts[i].Paid
			changed = true
			break
		}
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(ctx, snap, seq)
}

// AddExpense appends a new expense with a generated id and creation
// timestamp.
func (s *Store) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	s.mu.Lock()
	exp := core.Expense{
		ID:        s.newID(),
		Name:      in.Name,
		Amount:    in.Amount,
		Date:      in.Date,
		Category:  in.Category,
		CreatedAt: s.now(),
	}
	s.expenses = append(s.expenses, exp)
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return exp, s.persist(ctx, snap, seq)
}

// UpdateExpense replaces the supplied fields of the expense with the given
// id; a missing id is a no-op.
func (s *Store) UpdateExpense(ctx context.Context, id string, patch ExpensePatch) error {
	s.mu.Lock()
	changed := false
	for i := range s.expenses {
		if s.expenses[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.expenses[i].Name = *patch.Name
		}
		if patch.Amount != nil {
			s.expenses[i].Amount = *patch.Amount
		}
		if patch.Date != nil {
			s.expenses[i].Date = *patch.Date
		}
		if patch.Category != nil {
			s.expenses[i].Category = *patch.Category
		}
		changed = true
		break
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(ctx, snap, seq)
}

// DeleteExpense removes the expense with the given id, if present.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	kept, removed := withoutExpense(s.expenses, id)
	if !removed {
		s.mu.Unlock()
		return nil
	}
	s.expenses = kept
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(ctx, snap, seq)
}

// AddCategory appends a new category with a generated id. Deleting it
// later will not touch the records that reference it by name.
func (s *Store) AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	s.mu.Lock()
	cat := core.Category{
		ID:    s.newID(),
		Name:  in.Name,
		Color: in.Color,
	}
	s.categories = append(s.categories, cat)
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return cat, s.persist(ctx, snap, seq)
}

// UpdateCategory replaces the supplied fields of the category with the
// given id; a missing id is a no-op.
func (s *Store) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) error {
	s.mu.Lock()
	changed := false
	for i := range s.categories {
		if s.categories[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.categories[i].Name = *patch.Name
		}
		if patch.Color != nil {
			s.categories[i].Color = *patch.Color
		}
		changed = true
		break
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(ctx, snap, seq)
}

// DeleteCategory removes the category with the given id, if present.
// Accounts and expenses referencing it keep their category name and fall
// back to the default display color.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	kept := s.categories[:0:0]
	removed := false
	for _, c := range s.categories {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		s.mu.Unlock()
		return nil
	}
	s.categories = kept
	snap, seq := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(ctx, snap, seq)
}

// Snapshot returns a copy of the full current state.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Accounts returns a copy of all accounts in insertion order.
func (s *Store) Accounts() []core.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Account(nil), s.accounts...)
}

// Expenses returns a copy of all expenses in insertion order.
func (s *Store) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Expense(nil), s.expenses...)
}

// Categories returns a copy of all categories in insertion order.
func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.categories...)
}

// snapshotLocked stamps a mutation sequence number on the copied state.
// Callers must hold the write lock.
func (s *Store) snapshotLocked() (core.Snapshot, uint64) {
	s.seq++
	return s.copyLocked(), s.seq
}

func (s *Store) copyLocked() core.Snapshot {
	return core.Snapshot{
		Accounts:   append([]core.Account(nil), s.accounts...),
		Expenses:   append([]core.Expense(nil), s.expenses...),
		Categories: append([]core.Category(nil), s.categories...),
	}
}

func (s *Store) persist(ctx context.Context, snap core.Snapshot, seq uint64) error {
	if s.saver == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if seq <= s.savedSeq {
		// A newer state already reached the gateway.
		return nil
	}
	if err := s.saver.Save(ctx, snap); err != nil {
		return err
	}
	s.savedSeq = seq
	return nil
}

func withoutAccount(in []core.Account, id string) ([]core.Account, bool) {
	out := in[:0:0]
	removed := false
	for _, a := range in {
		if a.ID == id {
			removed = true
			continue
		}
		out = append(out, a)
	}
	return out, removed
}

func withoutExpense(in []core.Expense, id string) ([]core.Expense, bool) {
	out := in[:0:0]
	removed := false
	for _, e := range in {
		if e.ID == id {
			removed = true
			continue
		}
		out = append(out, e)
	}
	return out, removed
}
