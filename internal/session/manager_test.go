package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/labasi/labasi/internal/models"
)

// fakeGateway records every call and can be made to block or fail on
// demand, so tests control exactly when background requests resolve.
type fakeGateway struct {
	mu       sync.Mutex
	created  []string // project ids passed to CreateSession
	appended []appendCall
	ended    []string

	serverID    string
	createGate  chan struct{}            // when non-nil, CreateSession blocks until closed
	createGates map[string]chan struct{} // per-project gates, checked before createGate
	createErr   error
	endErr      error
	nextCreated int
}

type appendCall struct {
	sessionID string
	content   string
}

func (g *fakeGateway) CreateSession(ctx context.Context, projectID, agentID string) (*models.Session, error) {
	gate := g.createGate
	if perProject, ok := g.createGates[projectID]; ok {
		gate = perProject
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, projectID)
	g.nextCreated++
	id := g.serverID
	if id == "" {
		id = fmt.Sprintf("server-%d", g.nextCreated)
	}
	return &models.Session{ID: id, ProjectID: projectID, AgentID: agentID}, nil
}

func (g *fakeGateway) AppendMessage(ctx context.Context, sessionID, content string, source models.MessageSource) (*models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.appended = append(g.appended, appendCall{sessionID: sessionID, content: content})
	return &models.Message{SessionID: sessionID, Content: content, Source: source}, nil
}

func (g *fakeGateway) EndSession(ctx context.Context, sessionID string) (*models.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.endErr != nil {
		return nil, g.endErr
	}
	g.ended = append(g.ended, sessionID)
	return &models.Session{ID: sessionID}, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []struct{ sessionID, projectID string }
}

func (n *fakeNotifier) Notify(sessionID, projectID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, struct{ sessionID, projectID string }{sessionID, projectID})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitConfirmed polls until the manager's ref is Confirmed.
func waitConfirmed(t *testing.T, m *Manager) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ref, ok := m.Active(); ok && ref.Kind == Confirmed {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Session never confirmed")
}

func TestStartReturnsPlaceholderImmediately(t *testing.T) {
	gateway := &fakeGateway{createGate: make(chan struct{})}
	manager := NewManager(gateway, nil, WithLogger(quietLogger()))

	done := make(chan string, 1)
	go func() { done <- manager.Start("agent-1", "project-1") }()

	select {
	case id := <-done:
		if id == "" {
			t.Error("Start should return a non-empty placeholder id")
		}
	case <-time.After(time.Second):
		t.Fatal("Start blocked on the gateway round trip")
	}

	ref, ok := manager.Active()
	if !ok {
		t.Fatal("Expected an active session")
	}
	if ref.Kind != Pending {
		t.Errorf("Ref should be Pending before the create resolves, got %v", ref.Kind)
	}

	close(gateway.createGate)
	manager.Wait()
}

func TestConfirmationSwapsRef(t *testing.T) {
	gateway := &fakeGateway{serverID: "server-abc"}
	manager := NewManager(gateway, nil, WithLogger(quietLogger()))

	placeholder := manager.Start("agent-1", "project-1")
	manager.Wait()

	ref, ok := manager.Active()
	if !ok {
		t.Fatal("Expected an active session")
	}
	if ref.Kind != Confirmed {
		t.Errorf("Ref should be Confirmed after create resolves, got %v", ref.Kind)
	}
	if ref.ID != "server-abc" {
		t.Errorf("Ref should hold the server id, got %q", ref.ID)
	}
	if ref.ID == placeholder {
		t.Error("Confirmed id should differ from the placeholder")
	}
}

func TestStaleConfirmationAbandoned(t *testing.T) {
	gateway := &fakeGateway{createGate: make(chan struct{})}
	manager := NewManager(gateway, nil, WithLogger(quietLogger()))

	manager.Start("agent-1", "project-1")
	// End before the create round trip resolves.
	manager.End()

	close(gateway.createGate)
	manager.Wait()

	if _, ok := manager.Active(); ok {
		t.Error("A late confirmation must not resurrect an ended session")
	}
}

func TestRestartAbandonsPreviousConfirmation(t *testing.T) {
	firstGate := make(chan struct{})
	gateway := &fakeGateway{
		createGates: map[string]chan struct{}{"project-1": firstGate},
	}
	manager := NewManager(gateway, nil, WithLogger(quietLogger()))

	first := manager.Start("agent-1", "project-1")

	// Second start while the first create is still in flight. Its
	// create resolves at once, so it confirms as server-1.
	manager.Start("agent-1", "project-2")
	waitConfirmed(t, manager)

	// Now let the first create finish; its confirmation arrives for a
	// generation that has moved on and must be discarded.
	close(firstGate)
	manager.Wait()

	ref, ok := manager.Active()
	if !ok {
		t.Fatal("Expected an active session")
	}
	if ref.ID == first {
		t.Error("Active ref should belong to the second session")
	}
	if ref.Kind != Confirmed || ref.ID != "server-1" {
		t.Errorf("Unexpected ref after restart: %+v", ref)
	}
}

func TestTranscriptKeepsArrivalOrder(t *testing.T) {
	gateway := &fakeGateway{}
	manager := NewManager(gateway, nil, WithLogger(quietLogger()))

	manager.Start("agent-1", "project-1")
	contents := []string{"one", "two", "three", "four", "five"}
	for i, c := range contents {
		source := models.SourceUser
		if i%2 == 1 {
			source = models.SourceAssistant
		}
		manager.Record(source, c)
	}

	transcript := manager.Transcript()
	if len(transcript) != len(contents) {
		t.Fatalf("Expected %d transcript entries, got %d", len(contents), len(transcript))
	}
	for i, msg := range transcript {
		if msg.Content != contents[i] {
			t.Errorf("Transcript entry %d out of order: got %q, want %q", i, msg.Content, contents[i])
		}
	}

	manager.Wait()
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	if len(gateway.appended) != len(contents) {
		t.Errorf("Expected %d persisted messages, got %d", len(contents), len(gateway.appended))
	}
}

func TestRecordWithoutSessionIsNoOp(t *testing.T) {
	gateway := &fakeGateway{}
	manager := NewManager(gateway, nil, WithLogger(quietLogger()))

	manager.Record(models.SourceUser, "nobody listening")
	manager.Wait()

	if len(manager.Transcript()) != 0 {
		t.Error("Transcript should stay empty with no active session")
	}
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	if len(gateway.appended) != 0 {
		t.Error("No append should reach the gateway with no active session")
	}
}

func TestEndNotifiesExactlyOnce(t *testing.T) {
	gateway := &fakeGateway{serverID: "server-xyz"}
	notifier := &fakeNotifier{}
	endedCount := 0
	manager := NewManager(gateway, notifier,
		WithLogger(quietLogger()),
		WithEndedCallback(func() { endedCount++ }))

	manager.Start("agent-1", "project-9")
	manager.Wait() // let the create confirm first
	manager.End()
	manager.End() // second End with no session is a no-op
	manager.Wait()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.calls) != 1 {
		t.Fatalf("Expected exactly one analysis notification, got %d", len(notifier.calls))
	}
	if notifier.calls[0].sessionID != "server-xyz" {
		t.Errorf("Notification should carry the confirmed session id, got %q", notifier.calls[0].sessionID)
	}
	if notifier.calls[0].projectID != "project-9" {
		t.Errorf("Notification should carry the project id, got %q", notifier.calls[0].projectID)
	}
	if endedCount != 1 {
		t.Errorf("Ended callback should fire once, got %d", endedCount)
	}

	if _, ok := manager.Active(); ok {
		t.Error("Manager should be idle after End")
	}
}

func TestEndFailureSkipsNotification(t *testing.T) {
	gateway := &fakeGateway{endErr: errors.New("connection reset")}
	notifier := &fakeNotifier{}
	manager := NewManager(gateway, notifier,
		WithLogger(quietLogger()),
		WithEndedCallback(func() { t.Error("Ended callback should not fire on gateway failure") }))

	manager.Start("agent-1", "project-1")
	manager.Wait()
	manager.End()
	manager.Wait()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.calls) != 0 {
		t.Errorf("No notification expected when the end request fails, got %d", len(notifier.calls))
	}
	// The manager still goes idle; the failure is logged, not surfaced.
	if _, ok := manager.Active(); ok {
		t.Error("Manager should be idle even when the end request fails")
	}
}

func TestCreateFailureLeavesPlaceholder(t *testing.T) {
	gateway := &fakeGateway{createErr: errors.New("gateway down")}
	manager := NewManager(gateway, nil, WithLogger(quietLogger()))

	placeholder := manager.Start("agent-1", "project-1")
	manager.Wait()

	ref, ok := manager.Active()
	if !ok {
		t.Fatal("Session stays tracked under its placeholder when create fails")
	}
	if ref.Kind != Pending || ref.ID != placeholder {
		t.Errorf("Expected Pending placeholder ref, got %+v", ref)
	}

	// Messages keep flowing under the placeholder id.
	manager.Record(models.SourceUser, "still talking")
	manager.Wait()
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	if len(gateway.appended) != 1 || gateway.appended[0].sessionID != placeholder {
		t.Errorf("Append should use the placeholder id, got %+v", gateway.appended)
	}
}
