package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labasi/labasi/internal/models"
)

// CreateSession starts a new conversation session under a project.
func (s *Store) CreateSession(projectID, agentID string) (*models.Session, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, models.Invalidf("agentId is required")
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, models.Invalidf("projectId is required")
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		AgentID:   agentID,
		StartedAt: s.now(),
		Messages:  []models.Message{},
	}

	_, err := s.writeDB.Exec(queryInsertSession,
		session.ID, session.ProjectID, session.AgentID, session.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, nil
}

// GetSession returns a session with its messages in chronological order.
func (s *Store) GetSession(id string) (*models.Session, error) {
	session := &models.Session{}
	var endedAt sql.NullTime

	err := s.readDB.QueryRow(querySelectSession, id).Scan(
		&session.ID, &session.ProjectID, &session.AgentID, &session.StartedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if endedAt.Valid {
		t := endedAt.Time
		session.EndedAt = &t
	}

	session.Messages, err = s.sessionMessages(id)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns sessions newest-first, each with its messages.
// An empty projectID lists sessions across all projects.
func (s *Store) ListSessions(projectID string) ([]models.Session, error) {
	query := `SELECT id, project_id, agent_id, started_at, ended_at
		FROM conversation_sessions`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY started_at DESC`

	rows, err := s.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		var session models.Session
		var endedAt sql.NullTime
		err := rows.Scan(&session.ID, &session.ProjectID, &session.AgentID,
			&session.StartedAt, &endedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if endedAt.Valid {
			t := endedAt.Time
			session.EndedAt = &t
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		sessions[i].Messages, err = s.sessionMessages(sessions[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// EndSession stamps ended_at on the session. There is deliberately no
// guard against a session that already ended; the last write wins.
func (s *Store) EndSession(id string) (*models.Session, error) {
	result, err := s.writeDB.Exec(queryEndSession, s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	return s.GetSession(id)
}

// DeleteSession removes a session and its messages.
func (s *Store) DeleteSession(id string) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM conversation_messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM conversation_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return tx.Commit()
}

// AppendMessage records one immutable turn under a session.
func (s *Store) AppendMessage(sessionID string, content string, source models.MessageSource) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.Invalidf("content is required")
	}
	if !models.ValidSource(source) {
		return nil, models.Invalidf("source must be 'user' or 'assistant'")
	}

	var exists int
	err := s.readDB.QueryRow(`SELECT 1 FROM conversation_sessions WHERE id = ?`, sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Content:   content,
		Source:    source,
		Timestamp: s.now(),
	}

	_, err = s.writeDB.Exec(queryInsertMessage,
		msg.ID, msg.SessionID, msg.Content, msg.Source, msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}

// GetMessage returns a single message by id, or models.ErrNotFound.
func (s *Store) GetMessage(id string) (*models.Message, error) {
	msg := &models.Message{}
	err := s.readDB.QueryRow(`SELECT id, session_id, content, source, timestamp
		FROM conversation_messages WHERE id = ?`, id).Scan(
		&msg.ID, &msg.SessionID, &msg.Content, &msg.Source, &msg.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

func (s *Store) sessionMessages(sessionID string) ([]models.Message, error) {
	rows, err := s.readDB.Query(querySelectMessages, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Content, &msg.Source, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
