package analyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/storage"
)

// stubLLM returns a canned reply and remembers the prompt it was given.
type stubLLM struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "analyzer_test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedSession(t *testing.T, store *storage.Store, messages ...string) (projectID, sessionID string) {
	t.Helper()
	project, err := store.CreateProject("Protein Purification", "His-tag columns")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	session, err := store.CreateSession(project.ID, "agent-test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	for i, content := range messages {
		source := models.SourceUser
		if i%2 == 1 {
			source = models.SourceAssistant
		}
		if _, err := store.AppendMessage(session.ID, content, source); err != nil {
			t.Fatalf("Failed to append message: %v", err)
		}
	}
	return project.ID, session.ID
}

func TestAnalyze(t *testing.T) {
	t.Run("PersistsExtractedItems", func(t *testing.T) {
		store := setupStore(t)
		projectID, sessionID := seedSession(t, store,
			"the imidazole concentration looked off, elution was weak",
			"Noted. You may want to verify the buffer stock.")

		llm := &stubLLM{reply: "```json\n" + `{
			"notes": [{"title": "Weak elution", "content": "- imidazole concentration suspect"}],
			"todos": [
				{"content": "verify imidazole buffer stock", "priority": "high"},
				{"content": "rerun elution with fresh buffer", "priority": "normal"}
			]
		}` + "\n```"}

		analyzer := New(store, llm, quietLogger())
		result, err := analyzer.Analyze(context.Background(), sessionID, projectID)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}

		if len(result.Notes) != 1 {
			t.Fatalf("Expected 1 note, got %d", len(result.Notes))
		}
		if result.Notes[0].Title != "Weak elution" {
			t.Errorf("Note title mismatch: %q", result.Notes[0].Title)
		}

		if len(result.Todos) != 2 {
			t.Fatalf("Expected 2 todos, got %d", len(result.Todos))
		}
		if result.Todos[0].Content != "[high] verify imidazole buffer stock" {
			t.Errorf("High priority todo should carry the [high] prefix, got %q", result.Todos[0].Content)
		}
		if result.Todos[1].Content != "rerun elution with fresh buffer" {
			t.Errorf("Normal todo should be stored as-is, got %q", result.Todos[1].Content)
		}
		if result.Todos[0].Status != models.TodoOpen {
			t.Errorf("Extracted todos start open, got %q", result.Todos[0].Status)
		}

		// Persisted, not just returned.
		notes, _ := store.ListNotes(projectID)
		todos, _ := store.ListTodos(projectID, "")
		if len(notes) != 1 || len(todos) != 2 {
			t.Errorf("Expected items in storage, got %d notes, %d todos", len(notes), len(todos))
		}
	})

	t.Run("PromptCarriesTranscriptAndContext", func(t *testing.T) {
		store := setupStore(t)
		projectID, sessionID := seedSession(t, store, "gel shows a double band")
		store.CreateNote(projectID, "Column pressure", "pressure spiked at 0.4 MPa")
		store.CreateTodo(projectID, "order fresh resin", models.TodoOpen)

		llm := &stubLLM{reply: `{"notes": [], "todos": []}`}
		analyzer := New(store, llm, quietLogger())
		if _, err := analyzer.Analyze(context.Background(), sessionID, projectID); err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}

		for _, want := range []string{
			"[USER]: gel shows a double band",
			"Project: Protein Purification",
			"Notes: Column pressure",
			"Todos: order fresh resin",
		} {
			if !strings.Contains(llm.prompt, want) {
				t.Errorf("Prompt missing %q", want)
			}
		}
	})

	t.Run("EmptyTranscriptSkipsModel", func(t *testing.T) {
		store := setupStore(t)
		projectID, sessionID := seedSession(t, store)

		llm := &stubLLM{reply: `{"notes": [], "todos": []}`}
		analyzer := New(store, llm, quietLogger())
		result, err := analyzer.Analyze(context.Background(), sessionID, projectID)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if llm.calls != 0 {
			t.Error("Empty transcript should not reach the model")
		}
		if len(result.Notes) != 0 || len(result.Todos) != 0 {
			t.Error("Empty transcript should yield an empty result")
		}
	})

	t.Run("UnparseableReplyYieldsEmptyResult", func(t *testing.T) {
		store := setupStore(t)
		projectID, sessionID := seedSession(t, store, "anything")

		llm := &stubLLM{reply: "I'm sorry, I cannot produce JSON today."}
		analyzer := New(store, llm, quietLogger())
		result, err := analyzer.Analyze(context.Background(), sessionID, projectID)
		if err != nil {
			t.Fatalf("Parse failure must not be an error: %v", err)
		}
		if len(result.Notes) != 0 || len(result.Todos) != 0 {
			t.Error("Unparseable reply should yield an empty result")
		}
	})

	t.Run("BlankItemsSkipped", func(t *testing.T) {
		store := setupStore(t)
		projectID, sessionID := seedSession(t, store, "anything")

		llm := &stubLLM{reply: `{
			"notes": [{"title": "", "content": "orphan content"}, {"title": "Kept", "content": "real"}],
			"todos": [{"content": "   ", "priority": "normal"}]
		}`}
		analyzer := New(store, llm, quietLogger())
		result, err := analyzer.Analyze(context.Background(), sessionID, projectID)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if len(result.Notes) != 1 || result.Notes[0].Title != "Kept" {
			t.Errorf("Blank-titled note should be skipped, got %+v", result.Notes)
		}
		if len(result.Todos) != 0 {
			t.Errorf("Blank todo should be skipped, got %+v", result.Todos)
		}
	})

	t.Run("MissingSession", func(t *testing.T) {
		store := setupStore(t)
		projectID, _ := seedSession(t, store)

		analyzer := New(store, &stubLLM{}, quietLogger())
		if _, err := analyzer.Analyze(context.Background(), "no-such-session", projectID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ModelFailure", func(t *testing.T) {
		store := setupStore(t)
		projectID, sessionID := seedSession(t, store, "anything")

		llm := &stubLLM{err: errors.New("rate limited")}
		analyzer := New(store, llm, quietLogger())
		if _, err := analyzer.Analyze(context.Background(), sessionID, projectID); err == nil {
			t.Error("Expected an error when the model call fails")
		}
	})
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"NoFence", `{"a":1}`, `{"a":1}`},
		{"BareFence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"JSONFence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"UnclosedFence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFence(tc.in); got != tc.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTrigger(t *testing.T) {
	t.Run("CompletionCallback", func(t *testing.T) {
		var got *Result
		analyze := func(ctx context.Context, sessionID, projectID string) (*Result, error) {
			return &Result{Notes: []models.Note{{Title: "x"}}}, nil
		}
		trigger := NewTrigger(analyze, quietLogger(), WithCompletion(func(r *Result) { got = r }))

		trigger.Notify("session-1", "project-1")
		trigger.Wait()

		if got == nil || len(got.Notes) != 1 {
			t.Errorf("Completion callback should receive the result, got %+v", got)
		}
	})

	t.Run("FailureIsSwallowed", func(t *testing.T) {
		analyze := func(ctx context.Context, sessionID, projectID string) (*Result, error) {
			return nil, errors.New("backend down")
		}
		trigger := NewTrigger(analyze, quietLogger(), WithCompletion(func(*Result) {
			t.Error("Completion callback should not fire on failure")
		}))

		trigger.Notify("session-1", "project-1")
		trigger.Wait()
	})
}
