package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"promocast.app/engine/common/logger"
	"promocast.app/engine/internal/domain"
)

// ErrNoCandidate is returned when resolution is requested with no duplicate
// candidate pending.
var ErrNoCandidate = errors.New("no duplicate candidate to resolve")

// HasCandidate reports whether a duplicate candidate is pending. While one
// is pending the UI blocks forward progress on content generation.
func (s *Store) HasCandidate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate != nil
}

// ResolveDuplicate settles a pending duplicate candidate.
//
// useExisting=true re-fetches the existing event's parsed data from the
// backend and applies it; platform content is deliberately not regenerated,
// the existing event's content is assumed still valid. useExisting=false
// applies the already-prepared new parsed data and content directly, no
// round-trip needed because they were computed before the candidate was
// raised.
//
// Either branch clears the candidate unconditionally, including on error, so
// the blocking dialog can never get stuck.
func (s *Store) ResolveDuplicate(ctx context.Context, useExisting bool) error {
	s.mu.Lock()
	cand := s.candidate
	s.mu.Unlock()

	if cand == nil {
		return ErrNoCandidate
	}

	defer func() {
		s.mu.Lock()
		s.candidate = nil
		s.recomputeLocked()
		s.scheduleWorkspaceSaveLocked()
		s.mu.Unlock()
	}()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "engine.workspace.resolver",
		EventID:   logger.Ptr(cand.Existing.ID),
	})

	if !useExisting {
		s.mu.Lock()
		if cand.Parsed != nil {
			s.parsed = cand.Parsed.Clone()
			s.hashtags = unionTags(s.hashtags, cand.Parsed.Hashtags)
		}
		for platform, bag := range cand.Content {
			if s.content == nil {
				s.content = domain.PlatformContent{}
			}
			s.content[platform] = bag
		}
		s.scheduleParsedSaveLocked()
		s.scheduleContentSaveLocked()
		s.mu.Unlock()

		slog.InfoContext(ctx, "duplicate resolved as new event")
		return nil
	}

	parsed, err := s.backend.LoadParsedData(ctx, cand.Existing.ID)
	if err != nil {
		return fmt.Errorf("loading existing event data: %w", err)
	}

	s.mu.Lock()
	existing := cand.Existing
	s.event = &existing
	if parsed != nil {
		s.parsed = parsed
	}
	s.mu.Unlock()

	slog.InfoContext(ctx, "duplicate resolved to existing event")
	return nil
}
