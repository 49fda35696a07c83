package handlers

import (
	"net/http"
)

// Analyze runs the transcript analyzer for a finished session and
// reports the notes and todos it created.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		respondWithError(w, http.StatusServiceUnavailable, "analysis is not configured")
		return
	}

	var req struct {
		SessionID string `json:"sessionId"`
		ProjectID string `json:"projectId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondStoreError(w, err, "analysis")
		return
	}
	if req.SessionID == "" || req.ProjectID == "" {
		respondWithError(w, http.StatusBadRequest, "sessionId and projectId are required")
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req.SessionID, req.ProjectID)
	if err != nil {
		h.respondStoreError(w, err, "analysis")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
