package workflow

import "promocast.app/engine/internal/domain"

// Facts are the workspace observations the workflow state is derived from.
// Nothing else may influence the state.
type Facts struct {
	Publishing       bool
	Published        bool
	PlatformsCount   int
	ContentPlatforms int
	HasEventID       bool
	FileCount        int
}

// Derive maps workspace facts to the single workflow state shown to the UI.
// First match wins: an in-flight or completed publish dominates everything
// else, and a selection plus non-empty content outranks selection alone.
// Total, deterministic and side-effect free; callers recompute after every
// mutation that could change a fact.
func Derive(f Facts) domain.WorkflowState {
	switch {
	case f.Publishing:
		return domain.WorkflowPublishing
	case f.Published:
		return domain.WorkflowPublished
	case f.PlatformsCount > 0 && f.ContentPlatforms > 0:
		return domain.WorkflowContentReady
	case f.PlatformsCount > 0:
		return domain.WorkflowPlatformsSelected
	case f.HasEventID && f.FileCount > 0:
		return domain.WorkflowEventReady
	case f.FileCount > 0:
		return domain.WorkflowFilesUploaded
	default:
		return domain.WorkflowInitial
	}
}
