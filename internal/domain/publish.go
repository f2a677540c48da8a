package domain

import "time"

// PublishSession correlates one publish attempt with its results stream.
// Created when the backend acknowledges a submit, discarded when a new
// publish starts.
type PublishSession struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

// PlatformResult is one platform's outcome inside a publish response.
type PlatformResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// PublishResponse is the backend's answer to a submit call. Results carries
// per-platform outcomes; Success is the overall verdict.
type PublishResponse struct {
	Success          bool                      `json:"success"`
	Message          string                    `json:"message,omitempty"`
	Results          map[string]PlatformResult `json:"results,omitempty"`
	PublishSessionID string                    `json:"publishSessionId,omitempty"`
}

// HistoryEntry is one best-effort audit record of a successful publish.
type HistoryEntry struct {
	ID               int64     `json:"id,string"`
	EventID          string    `json:"event_id"`
	EventTitle       string    `json:"event_title"`
	Platforms        []string  `json:"platforms"`
	PublishSessionID string    `json:"publish_session_id"`
	PublishedAt      time.Time `json:"published_at"`
}
