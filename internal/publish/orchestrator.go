// Package publish drives the multi-platform publish operation: local
// precondition checks, the submit call, interpretation of the per-platform
// result map, and correlation with the results stream.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"promocast.app/engine/common/id"
	"promocast.app/engine/common/logger"
	"promocast.app/engine/internal/domain"
)

var (
	ErrNoFiles         = errors.New("no files uploaded yet")
	ErrNoPlatforms     = errors.New("no platforms selected")
	ErrNoEvent         = errors.New("no current event")
	ErrPublishInFlight = errors.New("a publish is already in flight")
)

// Backend is the slice of the backend client the orchestrator depends on.
type Backend interface {
	Submit(ctx context.Context, eventID string) (domain.PublishResponse, error)
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error
}

// Workspace exposes the store facts and transitions the orchestrator needs.
type Workspace interface {
	PublishPreflight() (eventID, title string, fileCount int, platforms []string)
	SetPublishing(v bool)
	MarkPublished()
}

// Outcome is what the UI shows after a submit.
type Outcome struct {
	Success bool                             `json:"success"`
	Message string                           `json:"message,omitempty"`
	Results map[string]domain.PlatformResult `json:"results,omitempty"`
	Session *domain.PublishSession           `json:"session,omitempty"`
}

type Orchestrator struct {
	backend  Backend
	ws       Workspace
	consumer *ResultsConsumer // nil when no results stream is configured

	mu          sync.Mutex
	inFlight    bool
	session     *domain.PublishSession
	statuses    map[string]domain.PlatformResult
	watchCancel context.CancelFunc
}

func NewOrchestrator(b Backend, ws Workspace, consumer *ResultsConsumer) *Orchestrator {
	return &Orchestrator{
		backend:  b,
		ws:       ws,
		consumer: consumer,
		statuses: map[string]domain.PlatformResult{},
	}
}

// Submit publishes the current event. The request carries only the event id;
// the backend reloads everything else from prior saves, which keeps a retry
// from ever diverging from what was persisted.
//
// Preconditions are checked locally first so an incomplete workspace fails
// fast without a round-trip. A second submit while one is in flight is
// rejected rather than risking duplicate sessions.
func (o *Orchestrator) Submit(ctx context.Context) (Outcome, error) {
	eventID, title, fileCount, platforms := o.ws.PublishPreflight()
	switch {
	case fileCount == 0:
		return Outcome{}, ErrNoFiles
	case len(platforms) == 0:
		return Outcome{}, ErrNoPlatforms
	case eventID == "":
		return Outcome{}, ErrNoEvent
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return Outcome{}, ErrPublishInFlight
	}
	o.inFlight = true
	// starting a new publish discards the previous session and its watch
	if o.watchCancel != nil {
		o.watchCancel()
		o.watchCancel = nil
	}
	o.session = nil
	o.statuses = map[string]domain.PlatformResult{}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "engine.publish.orchestrator",
		EventID:   logger.Ptr(eventID),
	})

	o.ws.SetPublishing(true)

	resp, err := o.backend.Submit(ctx, eventID)
	if err != nil {
		// revert: the workspace must never strand in "publishing"
		o.ws.SetPublishing(false)
		slog.ErrorContext(ctx, "publish submit failed", "error", err)
		return Outcome{}, err
	}

	session := &domain.PublishSession{ID: resp.PublishSessionID, StartedAt: time.Now()}
	o.mu.Lock()
	o.session = session
	for platform, result := range resp.Results {
		o.statuses[platform] = result
	}
	o.mu.Unlock()

	o.followResults(session.ID)

	if !resp.Success {
		o.ws.SetPublishing(false)
		msg := FailureMessage(resp)
		slog.WarnContext(ctx, "publish failed",
			"publish_session_id", resp.PublishSessionID,
			"message", msg,
		)
		return Outcome{Success: false, Message: msg, Results: resp.Results, Session: session}, nil
	}

	o.ws.MarkPublished()
	slog.InfoContext(ctx, "publish succeeded",
		"publish_session_id", resp.PublishSessionID,
		"platforms", len(resp.Results),
	)

	// History is best effort: a failed append must not invalidate the publish.
	entry := domain.HistoryEntry{
		ID:               id.New(),
		EventID:          eventID,
		EventTitle:       title,
		Platforms:        platforms,
		PublishSessionID: resp.PublishSessionID,
		PublishedAt:      time.Now(),
	}
	if err := o.backend.AppendHistory(ctx, entry); err != nil {
		slog.WarnContext(ctx, "history append failed", "error", err)
	}

	return Outcome{Success: true, Message: resp.Message, Results: resp.Results, Session: session}, nil
}

// Session returns the current publish session, if any.
func (o *Orchestrator) Session() *domain.PublishSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Statuses returns the latest known per-platform delivery outcomes, merged
// from the submit response and the results stream.
func (o *Orchestrator) Statuses() map[string]domain.PlatformResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[string]domain.PlatformResult, len(o.statuses))
	for platform, result := range o.statuses {
		out[platform] = result
	}
	return out
}

// Close stops any running results watch.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.watchCancel != nil {
		o.watchCancel()
		o.watchCancel = nil
	}
}

func (o *Orchestrator) followResults(sessionID string) {
	if o.consumer == nil || sessionID == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.watchCancel = cancel
	o.mu.Unlock()

	go func() {
		ctx := logger.WithLogFields(ctx, logger.LogFields{
			Component:        "engine.publish.results",
			PublishSessionID: logger.Ptr(sessionID),
		})
		err := o.consumer.Watch(ctx, sessionID, func(u ResultUpdate) {
			if u.Done || u.Platform == "" {
				return
			}
			o.mu.Lock()
			o.statuses[u.Platform] = domain.PlatformResult{Success: u.Success, Error: u.Error}
			o.mu.Unlock()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.WarnContext(ctx, "results stream watch ended", "error", err)
		}
	}()
}
