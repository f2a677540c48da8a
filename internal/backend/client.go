// Package backend is the HTTP client for the promotion backend that owns the
// durable event workspace. The backend is the single source of truth after
// every successful save; the engine only caches.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"promocast.app/engine/common/logger"
	"promocast.app/engine/core/config"
	"promocast.app/engine/internal/domain"
)

type Client struct {
	baseURL        string
	http           *http.Client
	publishTimeout time.Duration
}

func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           &http.Client{},
		publishTimeout: cfg.PublishTimeout,
	}
}

// LoadWorkspace fetches the current event plus selections and file
// references. A failed load yields an empty workspace rather than an error:
// startup must never block on a cold backend.
func (c *Client) LoadWorkspace(ctx context.Context) domain.WorkspaceSnapshot {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "engine.backend"})

	var snap domain.WorkspaceSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/event", nil, &snap); err != nil {
		slog.WarnContext(ctx, "workspace load failed, starting empty", "error", err)
		return domain.WorkspaceSnapshot{}
	}
	return snap
}

// SaveWorkspace pushes the workspace document atomically. It is an explicit
// no-op when there is no current event: during startup races an empty
// default workspace must never overwrite a real one.
func (c *Client) SaveWorkspace(ctx context.Context, snap domain.WorkspaceSnapshot) error {
	if snap.Event == nil || snap.Event.ID == "" {
		slog.DebugContext(ctx, "skipping workspace save without current event")
		return nil
	}
	return c.doJSON(ctx, http.MethodPost, "/event", snap, nil)
}

// RestoreSnapshot fetches the complete snapshot for a stored event. Errors
// surface: restoring is a deliberate operator action, not background sync.
func (c *Client) RestoreSnapshot(ctx context.Context, eventID string) (domain.RestoredWorkspace, error) {
	var restored domain.RestoredWorkspace
	err := c.doJSON(ctx, http.MethodGet, "/event/"+url.PathEscape(eventID)+"/restore", nil, &restored)
	if err != nil {
		return domain.RestoredWorkspace{}, fmt.Errorf("restoring event %s: %w", eventID, err)
	}
	return restored, nil
}

func (c *Client) LoadParsedData(ctx context.Context, eventID string) (*domain.ParsedData, error) {
	var parsed domain.ParsedData
	err := c.doJSON(ctx, http.MethodGet, "/event/"+url.PathEscape(eventID)+"/parsed-data", nil, &parsed)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading parsed data: %w", err)
	}
	return &parsed, nil
}

func (c *Client) SaveParsedData(ctx context.Context, eventID string, parsed *domain.ParsedData) error {
	return c.doJSON(ctx, http.MethodPut, "/event/"+url.PathEscape(eventID)+"/parsed-data", parsed, nil)
}

func (c *Client) LoadPlatformContent(ctx context.Context, eventID string) (domain.PlatformContent, error) {
	var content domain.PlatformContent
	err := c.doJSON(ctx, http.MethodGet, "/event/"+url.PathEscape(eventID)+"/platform-content", nil, &content)
	if err != nil {
		if isNotFound(err) {
			return domain.PlatformContent{}, nil
		}
		return nil, fmt.Errorf("loading platform content: %w", err)
	}
	return content, nil
}

func (c *Client) SavePlatformContent(ctx context.Context, eventID string, content domain.PlatformContent) error {
	return c.doJSON(ctx, http.MethodPut, "/event/"+url.PathEscape(eventID)+"/platform-content", content, nil)
}

// Upload is one file in an upload batch.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadResult is the backend's answer to a batch upload. Besides the new
// file references it may carry an auto-created event, parsed data when
// server-side parsing already happened, parsed hashtags, and a duplicate
// candidate when the parsed data resembles a stored event.
type UploadResult struct {
	Refs      []domain.FileReference     `json:"files"`
	Event     *domain.Event              `json:"event,omitempty"`
	Parsed    *domain.ParsedData         `json:"parsed_data,omitempty"`
	Hashtags  []string                   `json:"hashtags,omitempty"`
	Duplicate *domain.DuplicateCandidate `json:"duplicate,omitempty"`
}

func (c *Client) UploadFiles(ctx context.Context, files []Upload) (UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return UploadResult{}, fmt.Errorf("building upload form: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return UploadResult{}, fmt.Errorf("writing upload form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("closing upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files/upload-multiple", &body)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return UploadResult{}, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, apiError(resp)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResult{}, fmt.Errorf("decoding upload response: %w", err)
	}
	return result, nil
}

// ProbeFile checks that the backend still serves a cached file reference.
func (c *Client) ProbeFile(ctx context.Context, ref domain.FileReference) bool {
	target := ref.URL
	if strings.HasPrefix(target, "/") {
		target = c.baseURL + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// ValidateFileRefs drops references whose backing file is gone, preserving
// order. This reconciles the cached workspace with server storage truth
// without a full resync protocol.
func (c *Client) ValidateFileRefs(ctx context.Context, refs []domain.FileReference) []domain.FileReference {
	valid := make([]domain.FileReference, 0, len(refs))
	for _, ref := range refs {
		if c.ProbeFile(ctx, ref) {
			valid = append(valid, ref)
			continue
		}
		slog.InfoContext(ctx, "dropping stale file reference",
			"file_id", ref.ID,
			"name", ref.Name,
		)
	}
	return valid
}

// Submit asks the backend to publish the current event. The body carries
// only the event id: the backend reloads files, content and settings from
// its own prior saves, so a retried submit can never diverge from what was
// persisted. The timeout is generous because one delivery mode is browser
// automation.
func (c *Client) Submit(ctx context.Context, eventID string) (domain.PublishResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.publishTimeout)
	defer cancel()

	sc := logger.StartSpan(ctx, "engine.backend.submit", trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	ctx = sc.Context()

	var resp domain.PublishResponse
	err := c.doJSON(ctx, http.MethodPost, "/submit", map[string]string{"eventId": eventID}, &resp)
	if err != nil {
		sc.RecordError(err)
		return domain.PublishResponse{}, err
	}
	return resp, nil
}

func (c *Client) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	return c.doJSON(ctx, http.MethodPost, "/history", entry, nil)
}

func (c *Client) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, "/history", nil, &entries); err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return entries, nil
}

func (c *Client) LoadAppConfig(ctx context.Context) (map[string]any, error) {
	var cfg map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/config/app", nil, &cfg); err != nil {
		return nil, fmt.Errorf("loading app config: %w", err)
	}
	return cfg, nil
}

func (c *Client) SaveAppConfig(ctx context.Context, cfg map[string]any) error {
	return c.doJSON(ctx, http.MethodPatch, "/config/app", cfg, nil)
}

func (c *Client) LoadPlatformPreferences(ctx context.Context) (map[string]any, error) {
	var prefs map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/platforms/preferences", nil, &prefs); err != nil {
		return nil, fmt.Errorf("loading platform preferences: %w", err)
	}
	return prefs, nil
}

func (c *Client) SavePlatformPreferences(ctx context.Context, prefs map[string]any) error {
	return c.doJSON(ctx, http.MethodPatch, "/platforms/preferences", prefs, nil)
}

// LoadHashtagGroups fetches the curated hashtag groups. Cancellation and
// timeout come from the caller's context; the store arms a hard abort.
func (c *Client) LoadHashtagGroups(ctx context.Context) (map[string][]string, error) {
	var groups map[string][]string
	if err := c.doJSON(ctx, http.MethodGet, "/config/hashtags", nil, &groups); err != nil {
		return nil, fmt.Errorf("loading hashtag groups: %w", err)
	}
	return groups, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func transportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return err
}

func apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(raw) > 0 {
		// Tolerate non-JSON error bodies
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil {
			slog.Debug("non-json error body from backend",
				"status", resp.StatusCode,
				"body", logger.Truncate(string(raw), 256),
			)
		}
	}
	return apiErr
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
