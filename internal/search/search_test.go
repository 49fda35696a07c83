package search

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/storage"
)

func setup(t *testing.T) (*Searcher, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "search_test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewSearcher(store), store
}

func TestSearch(t *testing.T) {
	searcher, store := setup(t)

	projectA, _ := store.CreateProject("Sequencing", "")
	projectB, _ := store.CreateProject("Microscopy", "")
	sessionA, _ := store.CreateSession(projectA.ID, "agent-1")
	sessionB, _ := store.CreateSession(projectB.ID, "agent-1")

	store.AppendMessage(sessionA.ID, "the flow cell clogged again during loading", models.SourceUser)
	store.AppendMessage(sessionA.ID, "Check the loading beads and reprime the flow cell.", models.SourceAssistant)
	store.AppendMessage(sessionB.ID, "objective lens needs cleaning", models.SourceUser)

	t.Run("MatchesContent", func(t *testing.T) {
		results, err := searcher.Search("flow cell", 10)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("Expected 2 hits, got %d", len(results))
		}
		for _, r := range results {
			if r.ProjectID != projectA.ID || r.ProjectName != "Sequencing" {
				t.Errorf("Hit should carry its project, got %+v", r)
			}
			if r.Snippet == "" {
				t.Error("Hit should carry a snippet")
			}
		}
	})

	t.Run("NoHits", func(t *testing.T) {
		results, err := searcher.Search("centrifuge", 10)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("Expected no hits, got %d", len(results))
		}
	})

	t.Run("EmptyQuery", func(t *testing.T) {
		if _, err := searcher.Search("  ", 10); !errors.Is(err, models.ErrValidation) {
			t.Errorf("Expected ErrValidation for empty query, got %v", err)
		}
	})

	t.Run("ProjectFilter", func(t *testing.T) {
		results, err := searcher.SearchWithFilters("cleaning OR clogged", 10, Filters{ProjectID: projectB.ID})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) != 1 || results[0].SessionID != sessionB.ID {
			t.Errorf("Project filter should keep only microscopy hits, got %+v", results)
		}
	})

	t.Run("SourceFilter", func(t *testing.T) {
		results, err := searcher.SearchWithFilters("flow cell", 10, Filters{Source: models.SourceAssistant})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) != 1 || results[0].Source != models.SourceAssistant {
			t.Errorf("Source filter should keep only assistant hits, got %+v", results)
		}
	})

	t.Run("DeletedMessagesDropOut", func(t *testing.T) {
		store.DeleteSession(sessionA.ID)
		results, err := searcher.Search("flow cell", 10)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("Deleted messages should leave the index, got %d hits", len(results))
		}
	})
}
