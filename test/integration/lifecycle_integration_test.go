// Package integration exercises the full session lifecycle across the
// real stack: HTTP client against a live server, SQLite persistence,
// the lifecycle manager's background dispatch, and the post-session
// analysis trigger.
package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labasi/labasi/api"
	"github.com/labasi/labasi/internal/analyzer"
	"github.com/labasi/labasi/internal/client"
	"github.com/labasi/labasi/internal/models"
	"github.com/labasi/labasi/internal/session"
	"github.com/labasi/labasi/internal/storage"
)

type countingLLM struct {
	calls int32
	reply string
}

func (c *countingLLM) Complete(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.reply, nil
}

func TestSessionLifecycle(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "lifecycle_test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	llm := &countingLLM{reply: `{
		"notes": [{"title": "Incubator drift", "content": "- set point 37C, measured 35.2C"}],
		"todos": [{"content": "recalibrate incubator sensor", "priority": "high"}]
	}`}
	an := analyzer.New(store, llm, log)

	server := httptest.NewServer(api.NewServer(store, an, log, "0").Handler())
	defer server.Close()

	project, err := store.CreateProject("Tissue Culture", "incubator bay 3")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	gateway := client.New(server.URL, 5*time.Second)
	trigger := analyzer.NewTrigger(an.Analyze, log)
	manager := session.NewManager(gateway, trigger, session.WithLogger(log))

	// Start returns a placeholder synchronously; wait for the server id.
	placeholder := manager.Start("agent-voice", project.ID)
	if placeholder == "" {
		t.Fatal("Start should return a placeholder id")
	}
	waitFor(t, func() bool {
		ref, ok := manager.Active()
		return ok && ref.Kind == session.Confirmed
	}, "session confirmation")

	manager.Record(models.SourceUser, "the incubator reads two degrees low")
	manager.Record(models.SourceAssistant, "Log the drift and flag it for recalibration.")
	manager.Wait()

	ref, ok := manager.Active()
	if !ok {
		t.Fatal("Expected an active session")
	}
	if ref.ID == placeholder {
		t.Error("Confirmed id should have replaced the placeholder")
	}

	persisted, err := gateway.GetSession(context.Background(), ref.ID)
	if err != nil {
		t.Fatalf("Failed to fetch session: %v", err)
	}
	if len(persisted.Messages) != 2 {
		t.Fatalf("Expected 2 persisted messages, got %d", len(persisted.Messages))
	}
	if persisted.EndedAt != nil {
		t.Error("Session should still be live")
	}

	manager.End()
	manager.Wait()
	trigger.Wait()

	if _, ok := manager.Active(); ok {
		t.Error("Manager should be idle after End")
	}

	persisted, err = gateway.GetSession(context.Background(), ref.ID)
	if err != nil {
		t.Fatalf("Failed to refetch session: %v", err)
	}
	if persisted.EndedAt == nil {
		t.Error("Session should be ended server-side")
	}

	if got := atomic.LoadInt32(&llm.calls); got != 1 {
		t.Errorf("Expected exactly one analysis run, got %d", got)
	}

	notes, err := store.ListNotes(project.ID)
	if err != nil {
		t.Fatalf("Failed to list notes: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "Incubator drift" {
		t.Errorf("Analysis should have produced one note, got %+v", notes)
	}

	todos, err := store.ListTodos(project.ID, models.TodoOpen)
	if err != nil {
		t.Fatalf("Failed to list todos: %v", err)
	}
	if len(todos) != 1 || todos[0].Content != "[high] recalibrate incubator sensor" {
		t.Errorf("Analysis should have produced one prefixed todo, got %+v", todos)
	}
}

func TestEndBeforeConfirmation(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "early_end_test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := httptest.NewServer(api.NewServer(store, nil, log, "0").Handler())
	defer server.Close()

	project, err := store.CreateProject("Quick Question", "")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	gateway := client.New(server.URL, 5*time.Second)
	manager := session.NewManager(gateway, nil, session.WithLogger(log))

	// End immediately after Start. The end request races the create; it
	// may carry the placeholder id and miss. Either way the manager goes
	// idle and nothing panics or leaks.
	manager.Start("agent-voice", project.ID)
	manager.End()
	manager.Wait()

	if _, ok := manager.Active(); ok {
		t.Error("Manager should be idle after End")
	}

	sessions, err := store.ListSessions(project.ID)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	// At most the one session the create call persisted.
	if len(sessions) > 1 {
		t.Errorf("Expected at most one session, got %d", len(sessions))
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}
