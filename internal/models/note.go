package models

import (
	"strings"
	"time"
)

// TodoStatus is the lifecycle state of a todo item.
type TodoStatus string

const (
	TodoOpen TodoStatus = "open"
	TodoDone TodoStatus = "done"
)

func ValidStatus(s TodoStatus) bool {
	return s == TodoOpen || s == TodoDone
}

// Note is a project-scoped note. Modified is the append-only revision
// log: each entry holds the title/content that were current immediately
// before an update, oldest first. The live values stay outside the log.
type Note struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	Modified  []NoteRevision `json:"modified"`
}

// NoteRevision is one prior state of a note.
type NoteRevision struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// NotePatch is a partial update; nil fields keep their current value.
type NotePatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (p *NotePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Invalidf("title cannot be empty")
	}
	return nil
}

// Todo is a project-scoped task with the same revision pattern as Note.
type Todo struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	Content   string         `json:"content"`
	Status    TodoStatus     `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	Modified  []TodoRevision `json:"modified"`
}

// TodoRevision is one prior state of a todo.
type TodoRevision struct {
	Content    string     `json:"content"`
	Status     TodoStatus `json:"status"`
	ModifiedAt time.Time  `json:"modifiedAt"`
}

// TodoPatch is a partial update; nil fields keep their current value.
type TodoPatch struct {
	Content *string     `json:"content"`
	Status  *TodoStatus `json:"status"`
}

func (p *TodoPatch) Validate() error {
	if p.Status != nil && !ValidStatus(*p.Status) {
		return Invalidf("status must be 'open' or 'done'")
	}
	return nil
}
