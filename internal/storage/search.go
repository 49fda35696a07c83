package storage

import (
	"fmt"
	"strings"

	"github.com/labasi/labasi/internal/models"
)

// SearchMessages runs a full-text query over message content, best
// matches first. The query uses FTS5 match syntax; a plain word or
// phrase works as expected.
func (s *Store) SearchMessages(query string, limit int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.Invalidf("search query is required")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.readDB.Query(querySearchMessages, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var r models.SearchResult
		var content string
		err := rows.Scan(&r.MessageID, &r.SessionID, &r.ProjectID, &r.ProjectName,
			&content, &r.Source, &r.Timestamp, &r.Score)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		r.Snippet = snippet(content, 200)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Stats counts what the store holds.
func (s *Store) Stats() (*models.Stats, error) {
	stats := &models.Stats{
		TodosByStatus: make(map[models.TodoStatus]int),
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{queryCountProjects, &stats.Projects},
		{queryCountSessions, &stats.Sessions},
		{queryCountMessages, &stats.Messages},
		{queryCountNotes, &stats.Notes},
	}
	for _, c := range counts {
		if err := s.readDB.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	rows, err := s.readDB.Query(queryTodosByStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to count todos: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status models.TodoStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan todo count: %w", err)
		}
		stats.TodosByStatus[status] = count
	}
	return stats, rows.Err()
}

func snippet(content string, max int) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= max {
		return content
	}
	return strings.TrimSpace(content[:max]) + "..."
}
