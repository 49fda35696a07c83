// Package client is the HTTP client for the Labasi API, used by the
// session lifecycle manager (and any other Go front-end) to reach the
// persistence gateway over the wire.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labasi/labasi/internal/models"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateSession persists a new session and returns it with its
// server-assigned identity.
func (c *Client) CreateSession(ctx context.Context, projectID, agentID string) (*models.Session, error) {
	var session models.Session
	err := c.do(ctx, http.MethodPost, "/api/conversations", map[string]string{
		"agentId":   agentID,
		"projectId": projectID,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// AppendMessage records one turn under the session.
func (c *Client) AppendMessage(ctx context.Context, sessionID, content string, source models.MessageSource) (*models.Message, error) {
	var msg models.Message
	path := fmt.Sprintf("/api/conversations/%s/messages", url.PathEscape(sessionID))
	err := c.do(ctx, http.MethodPost, path, map[string]string{
		"content": content,
		"source":  string(source),
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// EndSession stamps the session's end time.
func (c *Client) EndSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	path := fmt.Sprintf("/api/conversations/%s/end", url.PathEscape(sessionID))
	if err := c.do(ctx, http.MethodPost, path, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession fetches a session with its ordered messages.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	path := fmt.Sprintf("/api/conversations/%s", url.PathEscape(sessionID))
	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions fetches sessions, optionally scoped to a project.
func (c *Client) ListSessions(ctx context.Context, projectID string) ([]models.Session, error) {
	path := "/api/conversations"
	if projectID != "" {
		path += "?projectId=" + url.QueryEscape(projectID)
	}
	var sessions []models.Session
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Analyze asks the server to run transcript analysis for a session.
func (c *Client) Analyze(ctx context.Context, sessionID, projectID string) error {
	return c.do(ctx, http.MethodPost, "/api/analyze", map[string]string{
		"sessionId": sessionID,
		"projectId": projectID,
	}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, models.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
