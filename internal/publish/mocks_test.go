package publish_test

import (
	"context"
	"sync"
	"sync/atomic"

	"promocast.app/engine/internal/domain"
)

type mockBackend struct {
	submitFn        func(ctx context.Context, eventID string) (domain.PublishResponse, error)
	appendHistoryFn func(ctx context.Context, entry domain.HistoryEntry) error

	submitCalls  int32
	historyCalls int32

	mu          sync.Mutex
	lastEventID string
	lastEntry   domain.HistoryEntry
}

func (m *mockBackend) Submit(ctx context.Context, eventID string) (domain.PublishResponse, error) {
	atomic.AddInt32(&m.submitCalls, 1)
	m.mu.Lock()
	m.lastEventID = eventID
	m.mu.Unlock()
	if m.submitFn != nil {
		return m.submitFn(ctx, eventID)
	}
	return domain.PublishResponse{Success: true}, nil
}

func (m *mockBackend) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	atomic.AddInt32(&m.historyCalls, 1)
	m.mu.Lock()
	m.lastEntry = entry
	m.mu.Unlock()
	if m.appendHistoryFn != nil {
		return m.appendHistoryFn(ctx, entry)
	}
	return nil
}

type mockWorkspace struct {
	preflightFn func() (eventID, title string, fileCount int, platforms []string)

	mu         sync.Mutex
	publishing []bool
	published  bool
}

func (m *mockWorkspace) PublishPreflight() (string, string, int, []string) {
	if m.preflightFn != nil {
		return m.preflightFn()
	}
	return "evt-1", "Launch Party", 1, []string{"twitter"}
}

func (m *mockWorkspace) SetPublishing(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishing = append(m.publishing, v)
}

func (m *mockWorkspace) MarkPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = true
}

func (m *mockWorkspace) publishingTransitions() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.publishing...)
}

func (m *mockWorkspace) markedPublished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.published
}
