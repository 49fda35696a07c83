// Package analyzer turns a finished conversation transcript into notes
// and todos for the owning project. Analysis is best-effort: parse
// failures and model refusals yield an empty result, not an error.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/labasi/labasi/internal/models"
)

// Store is the slice of the persistence gateway the analyzer needs.
type Store interface {
	GetSession(id string) (*models.Session, error)
	GetProject(id string) (*models.Project, error)
	ListNotes(projectID string) ([]models.Note, error)
	ListTodos(projectID string, status models.TodoStatus) ([]models.Todo, error)
	CreateNote(projectID, title, content string) (*models.Note, error)
	CreateTodo(projectID, content string, status models.TodoStatus) (*models.Todo, error)
}

// LLMClient produces a completion for an extraction prompt.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ExtractedNote is one note proposed by the model.
type ExtractedNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ExtractedTodo is one todo proposed by the model. Priority is
// advisory: "high" items get a "[high] " content prefix, everything
// else is stored as-is.
type ExtractedTodo struct {
	Content  string `json:"content"`
	Priority string `json:"priority"`
}

// Result is what one analysis run produced and persisted.
type Result struct {
	Notes []models.Note `json:"notes"`
	Todos []models.Todo `json:"todos"`
}

// Analyzer extracts notes and todos from session transcripts.
type Analyzer struct {
	store Store
	llm   LLMClient
	log   *slog.Logger
}

func New(store Store, llm LLMClient, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{store: store, llm: llm, log: log}
}

const extractionPrompt = `You are analyzing a laboratory voice conversation to extract actionable items.

## Your Task
Extract notes and todos that would be genuinely useful to the researcher.

## Guidelines
- NOTES: Observations, results, issues, troubleshooting discoveries, parameter values, experimental findings
- TODOS: Follow-up actions, verifications, things to order, tests to run, safety checks
- Be selective: only extract truly useful items, not every minor detail
- Safety-critical items should be high priority todos
- Expired reagents, concentration issues, equipment problems = high priority todos
- Combine related observations into single notes with bullet points
- Use clear, professional language

## Existing Items (avoid duplicates)
%s

## Conversation
Project: %s

%s

## Response Format
Return a JSON object with this exact structure (no markdown, just JSON):
{"notes": [{"title": "string", "content": "string with bullet points"}], "todos": [{"content": "string", "priority": "normal or high"}]}

Only include items that are genuinely useful. If nothing notable was discussed, return empty arrays.`

// Analyze loads the session transcript, asks the model for notes and
// todos, and persists whatever it proposed under the project. An empty
// transcript short-circuits to an empty result.
func (a *Analyzer) Analyze(ctx context.Context, sessionID, projectID string) (*Result, error) {
	session, err := a.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	project, err := a.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	result := &Result{Notes: []models.Note{}, Todos: []models.Todo{}}
	if len(session.Messages) == 0 {
		return result, nil
	}

	prompt := fmt.Sprintf(extractionPrompt,
		a.existingContext(projectID),
		project.Name,
		formatTranscript(session.Messages))

	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis completion failed: %w", err)
	}

	notes, todos := parseExtraction(raw)
	for _, n := range notes {
		if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Content) == "" {
			continue
		}
		note, err := a.store.CreateNote(projectID, n.Title, n.Content)
		if err != nil {
			a.log.Error("failed to persist extracted note", "error", err, "title", n.Title)
			continue
		}
		result.Notes = append(result.Notes, *note)
	}
	for _, t := range todos {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		if t.Priority == "high" {
			content = "[high] " + content
		}
		todo, err := a.store.CreateTodo(projectID, content, models.TodoOpen)
		if err != nil {
			a.log.Error("failed to persist extracted todo", "error", err)
			continue
		}
		result.Todos = append(result.Todos, *todo)
	}

	return result, nil
}

// existingContext summarizes up to ten recent notes and todos so the
// model can avoid proposing duplicates.
func (a *Analyzer) existingContext(projectID string) string {
	var parts []string

	if notes, err := a.store.ListNotes(projectID); err == nil && len(notes) > 0 {
		if len(notes) > 10 {
			notes = notes[:10]
		}
		titles := make([]string, len(notes))
		for i, n := range notes {
			titles[i] = n.Title
		}
		parts = append(parts, "Notes: "+strings.Join(titles, ", "))
	}

	if todos, err := a.store.ListTodos(projectID, ""); err == nil && len(todos) > 0 {
		if len(todos) > 10 {
			todos = todos[:10]
		}
		summaries := make([]string, len(todos))
		for i, t := range todos {
			summaries[i] = truncate(t.Content, 50)
		}
		parts = append(parts, "Todos: "+strings.Join(summaries, ", "))
	}

	if len(parts) == 0 {
		return "None yet."
	}
	return strings.Join(parts, "\n")
}

func formatTranscript(messages []models.Message) string {
	lines := make([]string, len(messages))
	for i, msg := range messages {
		lines[i] = fmt.Sprintf("[%s]: %s", strings.ToUpper(string(msg.Source)), msg.Content)
	}
	return strings.Join(lines, "\n")
}

// parseExtraction decodes the model's reply, tolerating a markdown code
// fence around the JSON. Anything unparseable yields empty slices.
func parseExtraction(raw string) ([]ExtractedNote, []ExtractedTodo) {
	raw = stripCodeFence(strings.TrimSpace(raw))

	var payload struct {
		Notes []ExtractedNote `json:"notes"`
		Todos []ExtractedTodo `json:"todos"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, nil
	}
	return payload.Notes, payload.Todos
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
