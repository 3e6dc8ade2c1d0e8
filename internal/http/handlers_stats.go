package http

import "net/http"

func (s *Server) handleAccountStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Data: s.store.AccountTotals()})
}

func (s *Server) handleExpenseStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Data: map[string]any{
		"total": s.store.TotalExpenses(),
	}})
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Data: s.store.ExpensesByCategory()})
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	writeJSON(w, http.StatusOK, envelope{Data: map[string]any{
		"year":  year,
		"month": month,
		"days":  s.store.DailyTotals(year, month),
	}})
}
