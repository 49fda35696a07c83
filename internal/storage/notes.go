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

// CreateNote inserts a note with an empty revision log.
func (s *Store) CreateNote(projectID, title, content string) (*models.Note, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, models.Invalidf("projectId is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, models.Invalidf("title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, models.Invalidf("content is required")
	}

	note := &models.Note{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		CreatedAt: s.now(),
		Modified:  []models.NoteRevision{},
	}

	_, err := s.writeDB.Exec(queryInsertNote,
		note.ID, note.ProjectID, note.Title, note.Content, note.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}
	return note, nil
}

// GetNote returns the note with its full revision log.
func (s *Store) GetNote(id string) (*models.Note, error) {
	return s.getNote(s.readDB, id)
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *Store) getNote(q querier, id string) (*models.Note, error) {
	note := &models.Note{}
	var modifiedJSON string

	err := q.QueryRow(querySelectNote, id).Scan(
		&note.ID, &note.ProjectID, &note.Title, &note.Content, &note.CreatedAt, &modifiedJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	note.Modified = []models.NoteRevision{}
	if modifiedJSON != "" {
		if err := json.Unmarshal([]byte(modifiedJSON), &note.Modified); err != nil {
			return nil, fmt.Errorf("failed to decode note revisions: %w", err)
		}
	}
	return note, nil
}

// ListNotes returns notes newest-first, optionally scoped to a project.
func (s *Store) ListNotes(projectID string) ([]models.Note, error) {
	query := `SELECT id, project_id, title, content, created_at, modified FROM notes`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var note models.Note
		var modifiedJSON string
		err := rows.Scan(&note.ID, &note.ProjectID, &note.Title, &note.Content,
			&note.CreatedAt, &modifiedJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		note.Modified = []models.NoteRevision{}
		if modifiedJSON != "" {
			if err := json.Unmarshal([]byte(modifiedJSON), &note.Modified); err != nil {
				return nil, fmt.Errorf("failed to decode note revisions: %w", err)
			}
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// UpdateNote applies a partial update inside one transaction: the
// current title/content are appended to the revision log first, then
// non-nil patch fields replace them. Every call appends exactly one
// revision, even when the patch changes nothing.
func (s *Store) UpdateNote(id string, patch models.NotePatch) (*models.Note, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	note, err := s.getNote(tx, id)
	if err != nil {
		return nil, err
	}

	note.Modified = append(note.Modified, models.NoteRevision{
		Title:      note.Title,
		Content:    note.Content,
		ModifiedAt: s.now(),
	})

	if patch.Title != nil {
		note.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}

	modifiedJSON, err := json.Marshal(note.Modified)
	if err != nil {
		return nil, fmt.Errorf("failed to encode note revisions: %w", err)
	}

	if _, err := tx.Exec(queryUpdateNote, note.Title, note.Content, string(modifiedJSON), id); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return note, nil
}

// DeleteNote removes a note. Deleting an absent note is not an error.
func (s *Store) DeleteNote(id string) error {
	if _, err := s.writeDB.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
