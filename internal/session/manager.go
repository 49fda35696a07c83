// Package session coordinates a live voice connection with its durable
// session record. Connection events arrive before the durable record's
// real identity is known, so the manager hands out a locally minted
// placeholder id and reconciles it with the server-assigned id when the
// create call resolves.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labasi/labasi/internal/models"
)

// Gateway is the slice of the persistence layer the manager dispatches
// to. All calls happen on background goroutines; the manager's own
// methods never block on them.
type Gateway interface {
	CreateSession(ctx context.Context, projectID, agentID string) (*models.Session, error)
	AppendMessage(ctx context.Context, sessionID, content string, source models.MessageSource) (*models.Message, error)
	EndSession(ctx context.Context, sessionID string) (*models.Session, error)
}

// Notifier requests post-session analysis. Implementations must not
// block for long and must swallow their own failures.
type Notifier interface {
	Notify(sessionID, projectID string)
}

// RefKind distinguishes a placeholder identity from a server-assigned one.
type RefKind int

const (
	// Pending means the id is a locally minted placeholder; the
	// create-session round trip has not resolved yet.
	Pending RefKind = iota
	// Confirmed means the id is the server-assigned identity.
	Confirmed
)

// Ref is the current session identity. In-flight operations close over
// whichever variant is current at dispatch time.
type Ref struct {
	Kind RefKind
	ID   string
}

// Manager owns the single mutable "current session" slot. One session
// is tracked at a time; starting a new session while one is active
// abandons tracking of the previous identity.
type Manager struct {
	gateway Gateway
	notify  Notifier
	log     *slog.Logger
	timeout time.Duration
	onEnded func()

	mu         sync.Mutex
	ref        *Ref
	projectID  string
	generation uint64
	transcript []models.Message

	wg sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout bounds each background gateway call.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithEndedCallback runs fn after a session-end request succeeds and
// the analyzer has been notified. Intended for UI refresh hooks.
func WithEndedCallback(fn func()) Option {
	return func(m *Manager) { m.onEnded = fn }
}

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager wires a manager to its gateway and analyzer trigger.
// notify may be nil when no analysis is wanted.
func NewManager(gateway Gateway, notify Notifier, opts ...Option) *Manager {
	m := &Manager{
		gateway: gateway,
		notify:  notify,
		log:     slog.Default(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a new session and returns its placeholder id
// synchronously, before any network response is available. The
// create-session request runs in the background; when it resolves, the
// Pending ref is swapped for the Confirmed server id, unless a later
// Start or End has moved the manager on.
//
// Messages recorded while the create call is still in flight are
// dispatched under the placeholder id. That is an accepted race: the
// conversation must start responding to speech before the round trip
// completes.
func (m *Manager) Start(agentID, projectID string) string {
	placeholder := uuid.NewString()

	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.ref = &Ref{Kind: Pending, ID: placeholder}
	m.projectID = projectID
	m.transcript = nil
	m.mu.Unlock()

	m.dispatch(func(ctx context.Context) {
		session, err := m.gateway.CreateSession(ctx, projectID, agentID)
		if err != nil {
			m.log.Error("failed to create session", "error", err, "placeholder", placeholder)
			return
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.generation != gen || m.ref == nil || m.ref.Kind != Pending {
			// The caller has already started another session or ended
			// this one; the confirmed id is abandoned.
			m.log.Warn("discarding stale session confirmation", "session_id", session.ID)
			return
		}
		m.ref = &Ref{Kind: Confirmed, ID: session.ID}
	})

	return placeholder
}

// Record appends a message to the in-memory transcript immediately, in
// event-arrival order, and dispatches an append-message request tagged
// with whichever session identity is held right now. Persistence
// failures are logged and never surfaced; persisted order is only
// guaranteed to match display order if the requests complete in the
// order they were issued.
func (m *Manager) Record(source models.MessageSource, content string) {
	m.mu.Lock()
	if m.ref == nil {
		m.mu.Unlock()
		m.log.Warn("no active session to record message to")
		return
	}
	sessionID := m.ref.ID
	m.transcript = append(m.transcript, models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Content:   content,
		Source:    source,
		Timestamp: time.Now(),
	})
	m.mu.Unlock()

	m.dispatch(func(ctx context.Context) {
		if _, err := m.gateway.AppendMessage(ctx, sessionID, content, source); err != nil {
			m.log.Error("failed to save message", "error", err, "session_id", sessionID)
		}
	})
}

// End clears the held identity and returns the manager to idle
// immediately; the end-session request runs in the background. On
// gateway success the analyzer is notified with the session and project
// ids, then the ended callback fires. Calling End with no active
// session is a no-op.
func (m *Manager) End() {
	m.mu.Lock()
	if m.ref == nil {
		m.mu.Unlock()
		return
	}
	ref := *m.ref
	projectID := m.projectID
	m.ref = nil
	m.projectID = ""
	m.generation++
	m.mu.Unlock()

	m.dispatch(func(ctx context.Context) {
		if _, err := m.gateway.EndSession(ctx, ref.ID); err != nil {
			m.log.Error("failed to end session", "error", err, "session_id", ref.ID)
			return
		}
		if m.notify != nil {
			m.notify.Notify(ref.ID, projectID)
		}
		if m.onEnded != nil {
			m.onEnded()
		}
	})
}

// Active reports whether a session is currently tracked and, if so,
// returns a copy of its ref.
func (m *Manager) Active() (Ref, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ref == nil {
		return Ref{}, false
	}
	return *m.ref, true
}

// Transcript returns a copy of the in-memory message list in
// event-arrival order. This ordering holds regardless of persistence
// timing.
func (m *Manager) Transcript() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Message, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// Wait blocks until all dispatched background work has finished. Used
// by tests and at shutdown; the live flow never calls it.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) dispatch(fn func(ctx context.Context)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		fn(ctx)
	}()
}
