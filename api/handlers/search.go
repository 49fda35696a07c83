package handlers

import (
	"net/http"
	"strconv"

	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/search"
)

// Search runs a full-text query over message transcripts.
// ?projectId= and ?source= narrow the results after ranking.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 20
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	searcher := search.NewSearcher(h.store)
	results, err := searcher.SearchWithFilters(query.Get("q"), limit, search.Filters{
		ProjectID: query.Get("projectId"),
		Source:    models.MessageSource(query.Get("source")),
	})
	if err != nil {
		h.respondStoreError(w, err, "search")
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}

// Stats reports store-wide counts.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		h.respondStoreError(w, err, "stats")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
