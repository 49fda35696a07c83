package handlers

import (
	"net/http"

	"github.com/labasi/labasi/internal/models"
)

func (h *Handlers) ListTodos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	todos, err := h.store.ListTodos(query.Get("projectId"), models.TodoStatus(query.Get("status")))
	if err != nil {
		h.respondStoreError(w, err, "todos")
		return
	}
	respondWithJSON(w, http.StatusOK, todos)
}

func (h *Handlers) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string            `json:"projectId"`
		Content   string            `json:"content"`
		Status    models.TodoStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondStoreError(w, err, "todo")
		return
	}

	todo, err := h.store.CreateTodo(req.ProjectID, req.Content, req.Status)
	if err != nil {
		h.respondStoreError(w, err, "todo")
		return
	}
	respondWithJSON(w, http.StatusCreated, todo)
}

func (h *Handlers) GetTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := h.store.GetTodo(r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, "todo")
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

// UpdateTodo applies a partial update; the prior state lands on the
// todo's revision log.
func (h *Handlers) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	var patch models.TodoPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.respondStoreError(w, err, "todo")
		return
	}

	todo, err := h.store.UpdateTodo(r.PathValue("id"), patch)
	if err != nil {
		h.respondStoreError(w, err, "todo")
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (h *Handlers) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTodo(r.PathValue("id")); err != nil {
		h.respondStoreError(w, err, "todo")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
