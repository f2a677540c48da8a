// Package workspace holds the engine's composition root: one state container
// over the current event workspace, kept consistent with the backend under
// debounced background persistence. The workflow state shown to the UI is
// always recomputed from facts after every mutation, never set directly.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"promocast.app/engine/common/logger"
	"promocast.app/engine/core/config"
	"promocast.app/engine/internal/backend"
	"promocast.app/engine/internal/domain"
	"promocast.app/engine/internal/persist"
	"promocast.app/engine/internal/template"
	"promocast.app/engine/internal/workflow"
)

const (
	saveKeyWorkspace = "workspace"
	saveKeyParsed    = "parsed-data"
	saveKeyContent   = "platform-content"
)

type Options struct {
	Autosave      config.AutosaveConfig
	ConfigTimeout time.Duration
}

// Store composes the backend client, the debounced persistence policy, the
// workflow deriver and the duplicate resolver into the single reactive state
// container the UI talks to.
type Store struct {
	backend  Backend
	gen      ContentGenerator
	debounce *persist.Debouncer
	opts     Options

	mu sync.Mutex

	// initialization guard pair: re-entrant calls during UI re-mounts are
	// no-ops, the load sequence runs exactly once per store lifetime
	initializing bool
	initialized  bool

	hashtagsLoading bool

	event     *domain.Event
	fileRefs  []domain.FileReference
	platforms []string
	hashtags  []string
	parsed    *domain.ParsedData
	content   domain.PlatformContent
	candidate *domain.DuplicateCandidate

	appConfig     map[string]any
	preferences   map[string]any
	hashtagGroups map[string][]string

	publishing bool
	published  bool
	state      domain.WorkflowState
}

func NewStore(b Backend, gen ContentGenerator, opts Options) *Store {
	if gen == nil {
		gen = NewTemplateGenerator()
	}
	if opts.Autosave.WorkspaceDelay == 0 {
		opts.Autosave.WorkspaceDelay = 2000 * time.Millisecond
	}
	if opts.Autosave.ParsedDataDelay == 0 {
		opts.Autosave.ParsedDataDelay = 1500 * time.Millisecond
	}
	if opts.ConfigTimeout == 0 {
		opts.ConfigTimeout = 10 * time.Second
	}
	return &Store{
		backend:  b,
		gen:      gen,
		debounce: persist.NewDebouncer(),
		opts:     opts,
		content:  domain.PlatformContent{},
		state:    domain.WorkflowInitial,
	}
}

// State is the immutable view handed to the UI layer.
type State struct {
	WorkflowState domain.WorkflowState       `json:"workflow_state"`
	Event         *domain.Event              `json:"current_event,omitempty"`
	FileRefs      []domain.FileReference     `json:"file_refs"`
	Platforms     []string                   `json:"platforms"`
	Hashtags      []string                   `json:"hashtags"`
	Parsed        *domain.ParsedData         `json:"parsed_data,omitempty"`
	Content       domain.PlatformContent     `json:"platform_content"`
	Candidate     *domain.DuplicateCandidate `json:"duplicate_candidate,omitempty"`
	HashtagGroups map[string][]string        `json:"hashtag_groups,omitempty"`
	AppConfig     map[string]any             `json:"app_config,omitempty"`
	Preferences   map[string]any             `json:"preferences,omitempty"`
	Initialized   bool                       `json:"initialized"`
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ev *domain.Event
	if s.event != nil {
		cp := *s.event
		ev = &cp
	}
	return State{
		WorkflowState: s.state,
		Event:         ev,
		FileRefs:      append([]domain.FileReference(nil), s.fileRefs...),
		Platforms:     append([]string(nil), s.platforms...),
		Hashtags:      append([]string(nil), s.hashtags...),
		Parsed:        s.parsed.Clone(),
		Content:       s.content.Clone(),
		Candidate:     s.candidate,
		HashtagGroups: s.hashtagGroups,
		AppConfig:     s.appConfig,
		Preferences:   s.preferences,
		Initialized:   s.initialized,
	}
}

func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Initialize runs the startup load sequence exactly once per store lifetime.
// Concurrent or repeated calls (UI frameworks re-invoke mounts) are no-ops
// while the first call is still loading and after it finished.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized || s.initializing {
		s.mu.Unlock()
		return nil
	}
	s.initializing = true
	s.mu.Unlock()

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "engine.workspace.store"})

	snap := s.backend.LoadWorkspace(ctx)
	snap.FileRefs = s.backend.ValidateFileRefs(ctx, snap.FileRefs)

	// Config and preference loads are background-class: a failure degrades
	// silently instead of blocking the operator.
	appCfg, err := s.backend.LoadAppConfig(ctx)
	if err != nil {
		slog.WarnContext(ctx, "app config load failed", "error", err)
	}
	prefs, err := s.backend.LoadPlatformPreferences(ctx)
	if err != nil {
		slog.WarnContext(ctx, "platform preferences load failed", "error", err)
	}

	s.mu.Lock()
	s.event = snap.Event
	s.fileRefs = snap.FileRefs
	s.hashtags = snap.Hashtags
	s.platforms = snap.Platforms
	if appCfg != nil {
		s.appConfig = appCfg
	}
	if prefs != nil {
		s.preferences = prefs
	}
	s.mu.Unlock()

	s.loadHashtagGroups(ctx)

	s.mu.Lock()
	s.initialized = true
	s.initializing = false
	s.recomputeLocked()
	s.mu.Unlock()

	slog.InfoContext(ctx, "workspace initialized",
		"has_event", snap.Event != nil,
		"file_refs", len(snap.FileRefs),
		"platforms", len(snap.Platforms),
	)
	return nil
}

// loadHashtagGroups is separately guarded against duplicate concurrent
// execution and aborts hard after the configured timeout. A cancellation is
// expected during UI re-mount races and is not logged as a failure.
func (s *Store) loadHashtagGroups(ctx context.Context) {
	s.mu.Lock()
	if s.hashtagsLoading {
		s.mu.Unlock()
		return
	}
	s.hashtagsLoading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.hashtagsLoading = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.opts.ConfigTimeout)
	defer cancel()

	groups, err := s.backend.LoadHashtagGroups(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			slog.DebugContext(ctx, "hashtag group load aborted", "error", err)
		} else {
			slog.WarnContext(ctx, "hashtag group load failed", "error", err)
		}
		return
	}

	s.mu.Lock()
	s.hashtagGroups = groups
	s.mu.Unlock()
}

// SelectPlatforms replaces the platform selection.
func (s *Store) SelectPlatforms(platforms []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.platforms = append([]string(nil), platforms...)
	s.recomputeLocked()
	s.scheduleWorkspaceSaveLocked()
}

// ToggleHashtag adds the tag to the selection, or removes it when present.
func (s *Store) ToggleHashtag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.hashtags {
		if existing == tag {
			s.hashtags = append(s.hashtags[:i], s.hashtags[i+1:]...)
			s.recomputeLocked()
			s.scheduleWorkspaceSaveLocked()
			return
		}
	}
	s.hashtags = append(s.hashtags, tag)
	s.recomputeLocked()
	s.scheduleWorkspaceSaveLocked()
}

// SetParsedField merges one manual edit into the live parsed-data working
// copy and arms the delayed flush.
func (s *Store) SetParsedField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.parsed == nil {
		s.parsed = &domain.ParsedData{}
	}
	if !s.parsed.SetField(name, value) {
		return fmt.Errorf("unknown parsed-data field %q", name)
	}
	s.recomputeLocked()
	s.scheduleParsedSaveLocked()
	return nil
}

// SetPlatformField edits one field of one platform's bag. The in-memory
// merge is read-modify-write against the latest snapshot under the store
// lock, so rapid edits to different platforms never clobber each other.
func (s *Store) SetPlatformField(platform, field string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.content == nil {
		s.content = domain.PlatformContent{}
	}
	bag := s.content[platform].Clone()
	bag[field] = value
	s.content[platform] = bag

	s.recomputeLocked()
	s.scheduleContentSaveLocked()
}

// UploadFiles posts a batch and folds the backend's answer into local state:
// new references merge in, a backend-asserted event is adopted, parsed
// hashtags join as a deduplicated union, and platform content is derived for
// every currently selected platform when parsing already happened. When the
// backend reports a duplicate candidate instead, the prepared data is parked
// on the candidate until the operator resolves it.
func (s *Store) UploadFiles(ctx context.Context, files []backend.Upload) error {
	result, err := s.backend.UploadFiles(ctx, files)
	if err != nil {
		return fmt.Errorf("uploading files: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fileRefs = append(s.fileRefs, result.Refs...)
	if result.Event != nil {
		adopted := *result.Event
		s.event = &adopted
	}

	switch {
	case result.Duplicate != nil:
		cand := *result.Duplicate
		if cand.Parsed == nil {
			cand.Parsed = result.Parsed
		}
		cand.Content = s.generateContentLocked(cand.Parsed)
		s.candidate = &cand
		slog.InfoContext(ctx, "duplicate candidate raised",
			"existing_event_id", cand.Existing.ID,
			"similarity", cand.Similarity,
		)
	case result.Parsed != nil:
		s.applyParsedLocked(result.Parsed, result.Hashtags)
	case len(result.Hashtags) > 0:
		s.hashtags = unionTags(s.hashtags, result.Hashtags)
	}

	s.recomputeLocked()
	s.scheduleWorkspaceSaveLocked()
	return nil
}

// RestoreEvent resets local state and adopts a stored event's full snapshot
// verbatim. This is a deliberate bulk load: it bypasses the debounce path
// and issues one explicit save so the restoration is durable before the
// caller proceeds. An explicit save failure here is surfaced, unlike
// autosave failures.
func (s *Store) RestoreEvent(ctx context.Context, eventID string) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "engine.workspace.store",
		EventID:   logger.Ptr(eventID),
	})

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	restored, err := s.backend.RestoreSnapshot(ctx, eventID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.event = restored.Event
	s.fileRefs = restored.FileRefs
	s.hashtags = restored.Hashtags
	s.platforms = restored.Platforms
	s.parsed = restored.Parsed
	if restored.Content != nil {
		s.content = restored.Content
	}
	s.recomputeLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	// Refresh dependent resources in the background; the adopted snapshot
	// already rendered, these only catch up with newer server-side edits.
	go s.refreshParsed(eventID)
	go s.refreshContent(eventID)

	if err := s.backend.SaveWorkspace(ctx, snap); err != nil {
		return fmt.Errorf("persisting restored workspace: %w", err)
	}

	slog.InfoContext(ctx, "event restored", "file_refs", len(restored.FileRefs))
	return nil
}

// NewEvent supersedes the current event and clears all local state.
func (s *Store) NewEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.recomputeLocked()
}

// TemplateVariables exposes the current variable set for template preview.
func (s *Store) TemplateVariables() template.VariableSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return template.Variables(s.parsed, s.fileRefs)
}

// UpdateAppConfig persists app-level settings. Explicit operator action, so
// errors surface.
func (s *Store) UpdateAppConfig(ctx context.Context, cfg map[string]any) error {
	if err := s.backend.SaveAppConfig(ctx, cfg); err != nil {
		return fmt.Errorf("saving app config: %w", err)
	}
	s.mu.Lock()
	s.appConfig = cfg
	s.mu.Unlock()
	return nil
}

// UpdatePlatformPreferences persists per-platform preferences.
func (s *Store) UpdatePlatformPreferences(ctx context.Context, prefs map[string]any) error {
	if err := s.backend.SavePlatformPreferences(ctx, prefs); err != nil {
		return fmt.Errorf("saving platform preferences: %w", err)
	}
	s.mu.Lock()
	s.preferences = prefs
	s.mu.Unlock()
	return nil
}

// PublishPreflight exposes the facts the publish orchestrator checks before
// any network call.
func (s *Store) PublishPreflight() (eventID, title string, fileCount int, platforms []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.event != nil {
		eventID = s.event.ID
		title = s.event.Title
	}
	if title == "" && s.parsed != nil {
		title = s.parsed.Title
	}
	return eventID, title, len(s.fileRefs), append([]string(nil), s.platforms...)
}

// SetPublishing flips the in-flight publish flag; the workflow state follows
// from derivation, so clearing it reverts to whatever the other facts imply
// rather than stranding the UI in "publishing".
func (s *Store) SetPublishing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.publishing = v
	s.recomputeLocked()
}

// MarkPublished records a successful publish.
func (s *Store) MarkPublished() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.publishing = false
	s.published = true
	s.recomputeLocked()
}

// Close stops background persistence.
func (s *Store) Close() {
	s.debounce.Stop()
}

func (s *Store) resetLocked() {
	s.event = nil
	s.fileRefs = nil
	s.platforms = nil
	s.hashtags = nil
	s.parsed = nil
	s.content = domain.PlatformContent{}
	s.candidate = nil
	s.publishing = false
	s.published = false
	s.debounce.Cancel(saveKeyWorkspace)
	s.debounce.Cancel(saveKeyParsed)
	s.debounce.Cancel(saveKeyContent)
}

func (s *Store) recomputeLocked() {
	s.state = workflow.Derive(workflow.Facts{
		Publishing:       s.publishing,
		Published:        s.published,
		PlatformsCount:   len(s.platforms),
		ContentPlatforms: len(s.content.Platforms()),
		HasEventID:       s.event != nil && s.event.ID != "",
		FileCount:        len(s.fileRefs),
	})
}

// applyParsedLocked replaces the parsed working copy, folds hashtags in as a
// deduplicated union, and derives platform content for every currently
// selected platform.
func (s *Store) applyParsedLocked(parsed *domain.ParsedData, extraTags []string) {
	s.parsed = parsed.Clone()
	s.hashtags = unionTags(s.hashtags, parsed.Hashtags, extraTags)

	generated := s.generateContentLocked(s.parsed)
	if len(generated) > 0 {
		if s.content == nil {
			s.content = domain.PlatformContent{}
		}
		for platform, bag := range generated {
			s.content[platform] = bag
		}
		s.scheduleContentSaveLocked()
	}
	s.scheduleParsedSaveLocked()
}

func (s *Store) generateContentLocked(parsed *domain.ParsedData) domain.PlatformContent {
	if parsed == nil || len(s.platforms) == 0 {
		return nil
	}
	vars := template.Variables(parsed, s.fileRefs)
	out := domain.PlatformContent{}
	for _, platform := range s.platforms {
		if bag := s.gen.Generate(platform, vars); len(bag) > 0 {
			out[platform] = bag
		}
	}
	return out
}

// scheduleWorkspaceSaveLocked arms the debounced autosave. The save is
// skipped entirely while the workspace is untouched: no files, no selection,
// no content means no network traffic.
func (s *Store) scheduleWorkspaceSaveLocked() {
	s.debounce.Schedule(saveKeyWorkspace, s.opts.Autosave.WorkspaceDelay, func() {
		s.mu.Lock()
		if s.state == domain.WorkflowInitial &&
			len(s.fileRefs) == 0 && len(s.platforms) == 0 && len(s.content.Platforms()) == 0 {
			s.mu.Unlock()
			return
		}
		snap := s.snapshotLocked()
		s.mu.Unlock()

		ctx := logger.WithLogFields(context.Background(),
			logger.LogFields{Component: "engine.workspace.autosave"})
		if err := s.backend.SaveWorkspace(ctx, snap); err != nil {
			// Autosave must never surface a blocking error; the next
			// mutation's debounce cycle will try again.
			slog.WarnContext(ctx, "workspace autosave failed", "error", err)
		}
	})
}

func (s *Store) scheduleParsedSaveLocked() {
	s.debounce.Schedule(saveKeyParsed, s.opts.Autosave.ParsedDataDelay, func() {
		s.mu.Lock()
		if s.event == nil || s.event.ID == "" || s.parsed == nil {
			s.mu.Unlock()
			return
		}
		eventID := s.event.ID
		parsed := s.parsed.Clone()
		s.mu.Unlock()

		ctx := logger.WithLogFields(context.Background(),
			logger.LogFields{Component: "engine.workspace.autosave", EventID: logger.Ptr(eventID)})
		if err := s.backend.SaveParsedData(ctx, eventID, parsed); err != nil {
			slog.WarnContext(ctx, "parsed-data autosave failed", "error", err)
		}
	})
}

func (s *Store) scheduleContentSaveLocked() {
	s.debounce.Schedule(saveKeyContent, s.opts.Autosave.ParsedDataDelay, func() {
		s.mu.Lock()
		if s.event == nil || s.event.ID == "" || len(s.content) == 0 {
			s.mu.Unlock()
			return
		}
		eventID := s.event.ID
		content := s.content.Clone()
		s.mu.Unlock()

		ctx := logger.WithLogFields(context.Background(),
			logger.LogFields{Component: "engine.workspace.autosave", EventID: logger.Ptr(eventID)})
		if err := s.backend.SavePlatformContent(ctx, eventID, content); err != nil {
			slog.WarnContext(ctx, "platform-content autosave failed", "error", err)
		}
	})
}

func (s *Store) snapshotLocked() domain.WorkspaceSnapshot {
	var ev *domain.Event
	if s.event != nil {
		cp := *s.event
		ev = &cp
	}
	return domain.WorkspaceSnapshot{
		Event:     ev,
		FileRefs:  append([]domain.FileReference(nil), s.fileRefs...),
		Hashtags:  append([]string(nil), s.hashtags...),
		Platforms: append([]string(nil), s.platforms...),
	}
}

func (s *Store) refreshParsed(eventID string) {
	ctx := logger.WithLogFields(context.Background(),
		logger.LogFields{Component: "engine.workspace.store", EventID: logger.Ptr(eventID)})
	parsed, err := s.backend.LoadParsedData(ctx, eventID)
	if err != nil {
		slog.WarnContext(ctx, "background parsed-data load failed", "error", err)
		return
	}
	if parsed == nil {
		return
	}
	s.mu.Lock()
	if s.event != nil && s.event.ID == eventID {
		s.parsed = parsed
		s.recomputeLocked()
	}
	s.mu.Unlock()
}

func (s *Store) refreshContent(eventID string) {
	ctx := logger.WithLogFields(context.Background(),
		logger.LogFields{Component: "engine.workspace.store", EventID: logger.Ptr(eventID)})
	content, err := s.backend.LoadPlatformContent(ctx, eventID)
	if err != nil {
		slog.WarnContext(ctx, "background platform-content load failed", "error", err)
		return
	}
	if len(content) == 0 {
		return
	}
	s.mu.Lock()
	if s.event != nil && s.event.ID == eventID {
		s.content = content
		s.recomputeLocked()
	}
	s.mu.Unlock()
}

func unionTags(base []string, more ...[]string) []string {
	seen := make(map[string]bool, len(base))
	out := append([]string(nil), base...)
	for _, tag := range base {
		seen[tag] = true
	}
	for _, list := range more {
		for _, tag := range list {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
