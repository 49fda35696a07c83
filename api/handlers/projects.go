package handlers

import (
	"net/http"

	"github.com/labasi/labasi/internal/models"
)

// ListProjects returns all projects with their derived session counts,
// newest first.
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects()
	if err != nil {
		h.respondStoreError(w, err, "projects")
		return
	}
	respondWithJSON(w, http.StatusOK, projects)
}

func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondStoreError(w, err, "project")
		return
	}

	project, err := h.store.CreateProject(req.Name, req.Description)
	if err != nil {
		h.respondStoreError(w, err, "project")
		return
	}
	respondWithJSON(w, http.StatusCreated, project)
}

func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, "project")
		return
	}
	respondWithJSON(w, http.StatusOK, project)
}

func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &patch); err != nil {
		h.respondStoreError(w, err, "project")
		return
	}

	project, err := h.store.UpdateProject(r.PathValue("id"), models.ProjectPatch{
		Name:        patch.Name,
		Description: patch.Description,
	})
	if err != nil {
		h.respondStoreError(w, err, "project")
		return
	}
	respondWithJSON(w, http.StatusOK, project)
}

// DeleteProject cascades to sessions, messages, notes and todos.
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProject(r.PathValue("id")); err != nil {
		h.respondStoreError(w, err, "project")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
