package http

import (
	"net/http"
	"time"

	"pocket/internal/amqp"
	"pocket/internal/core"
	"pocket/internal/store"
)

// accountView decorates an account with its read-time overdue state; the
// store never persists dueness.
type accountView struct {
	core.Account
	Overdue bool `json:"overdue"`
}

func accountViews(accounts []core.Account, now time.Time) []accountView {
	views := make([]accountView, len(accounts))
	for i, a := range accounts {
		views[i] = accountView{Account: a, Overdue: a.Overdue(now)}
	}
	return views
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	f := store.AccountFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}
	if f.Status == "" {
		f.Status = store.StatusAll
	}
	writeJSON(w, http.StatusOK, envelope{Data: accountViews(s.store.ListAccounts(f), time.Now())})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in core.AccountInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	acc, err := s.store.AddAccount(r.Context(), in)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityAccount, amqp.OpAdd, acc.ID)
	}
	writeMutation(w, http.StatusCreated, acc, err)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch store.AccountPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.store.UpdateAccount(r.Context(), id, patch)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityAccount, amqp.OpUpdate, id)
	}
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.store.DeleteAccount(r.Context(), id)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityAccount, amqp.OpDelete, id)
	}
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (s *Server) handleToggleAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.store.ToggleAccountPaid(r.Context(), id)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityAccount, amqp.OpToggle, id)
	}
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}
