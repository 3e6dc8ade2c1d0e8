package store

import (
	"math"
	"sort"

	"pocket/internal/core"
)

// The aggregation surface recomputes everything from the current
// collections on each call. Collections are small; correctness beats
// caching here, and a cached breakdown would have to be invalidated on
// every mutation anyway.

// AccountTotals sums account amounts split by paid status.
// Total == Paid + Pending holds exactly: amounts are integer cents and
// pending is derived as total minus paid.
func (s *Store) AccountTotals() core.AccountTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total, paid int64
	for _, a := range s.accounts {
		total += a.Amount.Cents
		if a.Paid {
			paid += a.Amount.Cents
		}
	}
	return core.AccountTotals{
		Total:   core.Money{Cents: total},
		Paid:    core.Money{Cents: paid},
		Pending: core.Money{Cents: total - paid},
	}
}

// TotalExpenses sums the amount of every expense.
func (s *Store) TotalExpenses() core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, e := range s.expenses {
		total += e.Amount.Cents
	}
	return core.Money{Cents: total}
}

// ExpensesByCategory groups expenses by their category name, resolves a
// display color per group and computes each group's integer share of the
// overall total. Groups are ordered by amount descending; percentages are
// rounded independently and may not sum to exactly 100.
func (s *Store) ExpensesByCategory() []core.CategoryStat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totalCents int64
	sums := make(map[string]int64)
	order := make([]string, 0)
	for _, e := range s.expenses {
		if _, seen := sums[e.Category]; !seen {
			order = append(order, e.Category)
		}
		sums[e.Category] += e.Amount.Cents
		totalCents += e.Amount.Cents
	}

	stats := make([]core.CategoryStat, 0, len(order))
	for _, name := range order {
		amount := sums[name]
		pct := 0
		if totalCents != 0 {
			pct = int(math.Round(float64(amount) / float64(totalCents) * 100))
		}
		stats = append(stats, core.CategoryStat{
			Category:   name,
			Amount:     core.Money{Cents: amount},
			Color:      s.resolveColorLocked(name),
			Percentage: pct,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Amount.Cents > stats[j].Amount.Cents
	})
	return stats
}

// DailyTotals sums expenses per day of the given month, one entry per
// calendar day including empty ones.
func (s *Store) DailyTotals(year, month int) []core.DailyTotal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := core.NewDate(year, month+1, 0).Day()
	totals := make([]core.DailyTotal, days)
	for i := range totals {
		totals[i].Day = i + 1
	}
	for _, e := range s.expenses {
		if e.Date.Year() != year || int(e.Date.Month()) != month {
			continue
		}
		d := e.Date.Day()
		if d >= 1 && d <= days {
			totals[d-1].Total.Cents += e.Amount.Cents
		}
	}
	return totals
}

// ResolveColor returns the display color of the category with the given
// name, or the fixed fallback when no such category exists. Dangling
// references keep their bucket; only the color degrades.
func (s *Store) ResolveColor(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveColorLocked(name)
}

func (s *Store) resolveColorLocked(name string) string {
	for _, c := range s.categories {
		if c.Name == name {
			return c.Color
		}
	}
	return core.FallbackColor
}
