package handlers

import (
	"net/http"

	"github.com/labasi/labasi/internal/models"
)

// ListSessions returns sessions newest-first, each with its messages in
// chronological order. ?projectId= narrows to one project.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions(r.URL.Query().Get("projectId"))
	if err != nil {
		h.respondStoreError(w, err, "sessions")
		return
	}
	respondWithJSON(w, http.StatusOK, sessions)
}

func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID   string `json:"agentId"`
		ProjectID string `json:"projectId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondStoreError(w, err, "session")
		return
	}

	session, err := h.store.CreateSession(req.ProjectID, req.AgentID)
	if err != nil {
		h.respondStoreError(w, err, "session")
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.GetSession(r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, "session")
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// DeleteSession removes the session and its messages.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSession(r.PathValue("id")); err != nil {
		h.respondStoreError(w, err, "session")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// EndSession stamps the session's end time. Ending an unknown session
// is 404; ending an already-ended session just restamps it.
func (h *Handlers) EndSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.EndSession(r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, "session")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"id":      session.ID,
		"endedAt": session.EndedAt,
	})
}

// AppendMessage records one immutable turn under the session.
func (h *Handlers) AppendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string               `json:"content"`
		Source  models.MessageSource `json:"source"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondStoreError(w, err, "message")
		return
	}

	msg, err := h.store.AppendMessage(r.PathValue("id"), req.Content, req.Source)
	if err != nil {
		h.respondStoreError(w, err, "message")
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}
