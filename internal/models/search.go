package models

import "time"

// SearchResult is one transcript hit from a full-text query.
type SearchResult struct {
	MessageID   string        `json:"messageId"`
	SessionID   string        `json:"sessionId"`
	ProjectID   string        `json:"projectId"`
	ProjectName string        `json:"projectName"`
	Snippet     string        `json:"snippet"`
	Source      MessageSource `json:"source"`
	Timestamp   time.Time     `json:"timestamp"`
	Score       float64       `json:"score"`
}

// Stats summarizes the size of the store.
type Stats struct {
	Projects      int                `json:"projects"`
	Sessions      int                `json:"sessions"`
	Messages      int                `json:"messages"`
	Notes         int                `json:"notes"`
	TodosByStatus map[TodoStatus]int `json:"todosByStatus"`
}
