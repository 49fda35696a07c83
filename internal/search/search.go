// Package search wraps the store's full-text index with result-side
// filtering that the index itself cannot express.
package search

import (
	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/storage"
)

type Searcher struct {
	store *storage.Store
}

func NewSearcher(store *storage.Store) *Searcher {
	return &Searcher{store: store}
}

func (s *Searcher) Search(query string, limit int) ([]models.SearchResult, error) {
	return s.store.SearchMessages(query, limit)
}

// Filters narrow a search after ranking.
type Filters struct {
	// ProjectID keeps only hits from one project.
	ProjectID string
	// Source keeps only hits from one side of the conversation.
	Source models.MessageSource
}

func (s *Searcher) SearchWithFilters(query string, limit int, filters Filters) ([]models.SearchResult, error) {
	results, err := s.store.SearchMessages(query, limit)
	if err != nil {
		return nil, err
	}

	if filters.ProjectID != "" {
		filtered := []models.SearchResult{}
		for _, r := range results {
			if r.ProjectID == filters.ProjectID {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if filters.Source != "" {
		filtered := []models.SearchResult{}
		for _, r := range results {
			if r.Source == filters.Source {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	return results, nil
}
