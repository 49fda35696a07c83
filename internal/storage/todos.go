package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labasi/labasi/internal/models"
)

// CreateTodo inserts a todo. An empty status defaults to "open".
func (s *Store) CreateTodo(projectID, content string, status models.TodoStatus) (*models.Todo, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, models.Invalidf("projectId is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, models.Invalidf("content is required")
	}
	if status == "" {
		status = models.TodoOpen
	}
	if !models.ValidStatus(status) {
		return nil, models.Invalidf("status must be 'open' or 'done'")
	}

	todo := &models.Todo{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Content:   content,
		Status:    status,
		CreatedAt: s.now(),
		Modified:  []models.TodoRevision{},
	}

	_, err := s.writeDB.Exec(queryInsertTodo,
		todo.ID, todo.ProjectID, todo.Content, todo.Status, todo.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}
	return todo, nil
}

// GetTodo returns the todo with its full revision log.
func (s *Store) GetTodo(id string) (*models.Todo, error) {
	return s.getTodo(s.readDB, id)
}

func (s *Store) getTodo(q querier, id string) (*models.Todo, error) {
	todo := &models.Todo{}
	var modifiedJSON string

	err := q.QueryRow(querySelectTodo, id).Scan(
		&todo.ID, &todo.ProjectID, &todo.Content, &todo.Status, &todo.CreatedAt, &modifiedJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	todo.Modified = []models.TodoRevision{}
	if modifiedJSON != "" {
		if err := json.Unmarshal([]byte(modifiedJSON), &todo.Modified); err != nil {
			return nil, fmt.Errorf("failed to decode todo revisions: %w", err)
		}
	}
	return todo, nil
}

// ListTodos returns todos newest-first, optionally filtered by project
// and status.
func (s *Store) ListTodos(projectID string, status models.TodoStatus) ([]models.Todo, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, models.Invalidf("status must be 'open' or 'done'")
	}

	query := `SELECT id, project_id, content, status, created_at, modified FROM todos WHERE 1=1`
	args := []any{}
	if projectID != "" {
		query += ` AND project_id = ?`
		args = append(args, projectID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var todo models.Todo
		var modifiedJSON string
		err := rows.Scan(&todo.ID, &todo.ProjectID, &todo.Content, &todo.Status,
			&todo.CreatedAt, &modifiedJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todo.Modified = []models.TodoRevision{}
		if modifiedJSON != "" {
			if err := json.Unmarshal([]byte(modifiedJSON), &todo.Modified); err != nil {
				return nil, fmt.Errorf("failed to decode todo revisions: %w", err)
			}
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// UpdateTodo mirrors UpdateNote: the current content/status are appended
// to the revision log before non-nil patch fields replace them, all in
// one transaction.
func (s *Store) UpdateTodo(id string, patch models.TodoPatch) (*models.Todo, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	todo, err := s.getTodo(tx, id)
	if err != nil {
		return nil, err
	}

	todo.Modified = append(todo.Modified, models.TodoRevision{
		Content:    todo.Content,
		Status:     todo.Status,
		ModifiedAt: s.now(),
	})

	if patch.Content != nil {
		todo.Content = *patch.Content
	}
	if patch.Status != nil {
		todo.Status = *patch.Status
	}

	modifiedJSON, err := json.Marshal(todo.Modified)
	if err != nil {
		return nil, fmt.Errorf("failed to encode todo revisions: %w", err)
	}

	if _, err := tx.Exec(queryUpdateTodo, todo.Content, todo.Status, string(modifiedJSON), id); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return todo, nil
}

// DeleteTodo removes a todo. Deleting an absent todo is not an error.
func (s *Store) DeleteTodo(id string) error {
	if _, err := s.writeDB.Exec(`DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}
