package store

import (
	"sort"
	"strings"

	"pocket/internal/core"
)

// Status filter values for ListAccounts.
const (
	StatusAll     = "all"
	StatusPaid    = "paid"
	StatusPending = "pending"
)

type (
	// AccountFilter narrows ListAccounts. An empty status means all; the
	// search term matches the name case-insensitively.
	AccountFilter struct {
		Status string
		Search string
	}

	// ExpenseFilter narrows ListExpenses. An empty category means all.
	ExpenseFilter struct {
		Category string
		Search   string
	}
)

// ListAccounts returns accounts matching the filter, pending ones first,
// insertion order preserved within each group.
func (s *Store) ListAccounts(f AccountFilter) []core.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		switch f.Status {
		case StatusPaid:
			if !a.Paid {
				continue
			}
		case StatusPending:
			if a.Paid {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Name), search) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Paid && out[j].Paid
	})
	return out
}

// ListExpenses returns expenses matching the filter, newest date first.
func (s *Store) ListExpenses(f ExpenseFilter) []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if f.Category != "" && f.Category != StatusAll && e.Category != f.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Name), search) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// RecentExpenses returns up to limit expenses ordered by creation time,
// newest first.
func (s *Store) RecentExpenses(limit int) []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]core.Expense(nil), s.expenses...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
