// Package handlers implements the REST surface over the persistence
// gateway and the analyzer.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labasi/labasi/internal/analyzer"
	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/storage"
)

type Handlers struct {
	store    *storage.Store
	analyzer *analyzer.Analyzer
	log      *slog.Logger
}

// New wires the handlers. analyzer may be nil; the analyze endpoint
// then reports 503.
func New(store *storage.Store, an *analyzer.Analyzer, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{store: store, analyzer: an, log: log}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps gateway errors onto HTTP statuses: validation
// failures are the caller's fault, missing entities are 404, anything
// else is a generic 500 so internals never leak.
func (h *Handlers) respondStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		respondWithError(w, http.StatusNotFound, fallback+" not found")
	default:
		h.log.Error(fallback+" operation failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to process "+fallback)
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Invalidf("invalid JSON body")
	}
	return nil
}
