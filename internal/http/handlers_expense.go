package http

import (
	"net/http"
	"strconv"

	"pocket/internal/amqp"
	"pocket/internal/core"
	"pocket/internal/store"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if v := q.Get("recent"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			limit = 5
		}
		writeJSON(w, http.StatusOK, envelope{Data: s.store.RecentExpenses(limit)})
		return
	}

	f := store.ExpenseFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	writeJSON(w, http.StatusOK, envelope{Data: s.store.ListExpenses(f)})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	exp, err := s.store.AddExpense(r.Context(), in)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityExpense, amqp.OpAdd, exp.ID)
	}
	writeMutation(w, http.StatusCreated, exp, err)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch store.ExpensePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.store.UpdateExpense(r.Context(), id, patch)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityExpense, amqp.OpUpdate, id)
	}
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.store.DeleteExpense(r.Context(), id)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityExpense, amqp.OpDelete, id)
	}
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}
