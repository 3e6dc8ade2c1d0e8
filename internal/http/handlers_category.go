package http

import (
	"net/http"

	"pocket/internal/amqp"
	"pocket/internal/core"
	"pocket/internal/store"
)

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Data: s.store.Categories()})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in core.CategoryInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cat, err := s.store.AddCategory(r.Context(), in)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityCategory, amqp.OpAdd, cat.ID)
	}
	writeMutation(w, http.StatusCreated, cat, err)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch store.CategoryPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.store.UpdateCategory(r.Context(), id, patch)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityCategory, amqp.OpUpdate, id)
	}
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.store.DeleteCategory(r.Context(), id)
	if err == nil || isStorageWarning(err) {
		s.events.Publish(r.Context(), amqp.EntityCategory, amqp.OpDelete, id)
	}
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}
