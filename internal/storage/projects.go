package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labasi/labasi/internal/models"
)

// CreateProject inserts a new project and returns it with its assigned
// id and timestamps.
func (s *Store) CreateProject(name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.Invalidf("name is required")
	}

	now := s.now()
	project := &models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.writeDB.Exec(queryInsertProject,
		project.ID, project.Name, nullable(project.Description), project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	return project, nil
}

// GetProject returns the project with the given id, or models.ErrNotFound.
func (s *Store) GetProject(id string) (*models.Project, error) {
	project := &models.Project{}
	var description sql.NullString

	err := s.readDB.QueryRow(querySelectProject, id).Scan(
		&project.ID, &project.Name, &description, &project.CreatedAt, &project.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	project.Description = description.String
	return project, nil
}

// ListProjects returns all projects newest-first, each with its derived
// session count.
func (s *Store) ListProjects() ([]models.Project, error) {
	rows, err := s.readDB.Query(querySelectProjects)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var project models.Project
		var description sql.NullString
		err := rows.Scan(&project.ID, &project.Name, &description,
			&project.CreatedAt, &project.UpdatedAt, &project.SessionCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		project.Description = description.String
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// UpdateProject applies a partial update. Nil patch fields keep their
// current values.
func (s *Store) UpdateProject(id string, patch models.ProjectPatch) (*models.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	project := &models.Project{}
	var description sql.NullString
	err = tx.QueryRow(querySelectProject, id).Scan(
		&project.ID, &project.Name, &description, &project.CreatedAt, &project.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	project.Description = description.String

	if patch.Name != nil {
		project.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		project.Description = strings.TrimSpace(*patch.Description)
	}
	project.UpdatedAt = s.now()

	_, err = tx.Exec(`UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		project.Name, nullable(project.Description), project.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return project, nil
}

// DeleteProject removes the project and everything it owns: messages
// before sessions, then notes and todos, then the project row. The
// cascade is idempotent; deleting an absent project is not an error.
func (s *Store) DeleteProject(id string) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []string{
		`DELETE FROM conversation_messages WHERE session_id IN
			(SELECT id FROM conversation_sessions WHERE project_id = ?)`,
		`DELETE FROM conversation_sessions WHERE project_id = ?`,
		`DELETE FROM notes WHERE project_id = ?`,
		`DELETE FROM todos WHERE project_id = ?`,
		`DELETE FROM projects WHERE id = ?`,
	}
	for _, step := range steps {
		if _, err := tx.Exec(step, id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
	}

	return tx.Commit()
}

// nullable maps the empty string to NULL so optional text columns stay
// NULL rather than "".
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
