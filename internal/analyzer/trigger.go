package analyzer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AnalyzeFunc runs one analysis pass for a session.
type AnalyzeFunc func(ctx context.Context, sessionID, projectID string) (*Result, error)

// Trigger invokes analysis fire-and-forget after a session ends.
// Failures are logged only; success is consumed solely to invoke the
// optional completion callback.
type Trigger struct {
	analyze    AnalyzeFunc
	log        *slog.Logger
	timeout    time.Duration
	onComplete func(*Result)

	wg sync.WaitGroup
}

// TriggerOption configures a Trigger.
type TriggerOption func(*Trigger)

// WithCompletion runs fn with the analysis result after a successful run.
func WithCompletion(fn func(*Result)) TriggerOption {
	return func(t *Trigger) { t.onComplete = fn }
}

// WithTriggerTimeout bounds one analysis run.
func WithTriggerTimeout(d time.Duration) TriggerOption {
	return func(t *Trigger) { t.timeout = d }
}

func NewTrigger(analyze AnalyzeFunc, log *slog.Logger, opts ...TriggerOption) *Trigger {
	if log == nil {
		log = slog.Default()
	}
	t := &Trigger{
		analyze: analyze,
		log:     log,
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Notify schedules analysis of the session's transcript and returns
// immediately. Satisfies the session manager's Notifier contract.
func (t *Trigger) Notify(sessionID, projectID string) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		result, err := t.analyze(ctx, sessionID, projectID)
		if err != nil {
			t.log.Error("session analysis failed",
				"error", err, "session_id", sessionID, "project_id", projectID)
			return
		}
		t.log.Info("session analysis complete",
			"session_id", sessionID,
			"notes", len(result.Notes),
			"todos", len(result.Todos))
		if t.onComplete != nil {
			t.onComplete(result)
		}
	}()
}

// Wait blocks until all scheduled analyses have finished.
func (t *Trigger) Wait() {
	t.wg.Wait()
}
