package handlers

import (
	"net/http"

	"github.com/labasi/labasi/internal/models"
)

func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.ListNotes(r.URL.Query().Get("projectId"))
	if err != nil {
		h.respondStoreError(w, err, "notes")
		return
	}
	respondWithJSON(w, http.StatusOK, notes)
}

func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"projectId"`
		Title     string `json:"title"`
		Content   string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondStoreError(w, err, "note")
		return
	}

	note, err := h.store.CreateNote(req.ProjectID, req.Title, req.Content)
	if err != nil {
		h.respondStoreError(w, err, "note")
		return
	}
	respondWithJSON(w, http.StatusCreated, note)
}

func (h *Handlers) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.store.GetNote(r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, "note")
		return
	}
	respondWithJSON(w, http.StatusOK, note)
}

// UpdateNote applies a partial update; the prior state lands on the
// note's revision log.
func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var patch models.NotePatch
	if err := decodeJSON(r, &patch); err != nil {
		h.respondStoreError(w, err, "note")
		return
	}

	note, err := h.store.UpdateNote(r.PathValue("id"), patch)
	if err != nil {
		h.respondStoreError(w, err, "note")
		return
	}
	respondWithJSON(w, http.StatusOK, note)
}

func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteNote(r.PathValue("id")); err != nil {
		h.respondStoreError(w, err, "note")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
