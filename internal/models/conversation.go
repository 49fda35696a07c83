package models

import (
	"time"
)

// MessageSource tags who produced a message.
type MessageSource string

const (
	SourceUser      MessageSource = "user"
	SourceAssistant MessageSource = "assistant"
)

// ValidSource reports whether s is one of the two allowed source tags.
func ValidSource(s MessageSource) bool {
	return s == SourceUser || s == SourceAssistant
}

// Session is one continuous voice conversation with the external agent,
// scoped to a project. EndedAt is nil while the session is in progress.
type Session struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	AgentID   string     `json:"agentId"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Messages  []Message  `json:"messages"`
}

// Message is one turn within a session. Immutable once recorded.
type Message struct {
	ID        string        `json:"id"`
	SessionID string        `json:"sessionId"`
	Content   string        `json:"content"`
	Source    MessageSource `json:"source"`
	Timestamp time.Time     `json:"timestamp"`
}
