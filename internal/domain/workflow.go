package domain

// WorkflowState summarizes workspace progress for the UI. It is always a
// pure derivation of current workspace facts and is never set independently,
// so stored flags and UI affordances cannot drift apart.
type WorkflowState string

const (
	WorkflowInitial           WorkflowState = "initial"
	WorkflowFilesUploaded     WorkflowState = "files_uploaded"
	WorkflowEventReady        WorkflowState = "event_ready"
	WorkflowPlatformsSelected WorkflowState = "platforms_selected"
	WorkflowContentReady      WorkflowState = "content_ready"
	WorkflowPublishing        WorkflowState = "publishing"
	WorkflowPublished         WorkflowState = "published"
)

func (s WorkflowState) Valid() bool {
	switch s {
	case WorkflowInitial, WorkflowFilesUploaded, WorkflowEventReady,
		WorkflowPlatformsSelected, WorkflowContentReady,
		WorkflowPublishing, WorkflowPublished:
		return true
	}
	return false
}
