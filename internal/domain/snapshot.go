package domain

// WorkspaceSnapshot is the atomically saved workspace document: event
// identity, file references and the operator's selections. Parsed data and
// platform content live in their own resources and are persisted separately.
type WorkspaceSnapshot struct {
	Event     *Event          `json:"current_event,omitempty"`
	FileRefs  []FileReference `json:"file_refs,omitempty"`
	Hashtags  []string        `json:"hashtags,omitempty"`
	Platforms []string        `json:"platforms,omitempty"`
}

// RestoredWorkspace is the full snapshot returned by the restore endpoint,
// adopted verbatim when the operator resumes an earlier event.
type RestoredWorkspace struct {
	WorkspaceSnapshot
	Parsed  *ParsedData     `json:"parsed_data,omitempty"`
	Content PlatformContent `json:"platform_content,omitempty"`
}

// DuplicateCandidate is the transient conflict raised when newly parsed data
// resembles an already-stored event. It carries the existing event's summary
// alongside the freshly prepared data, and lives only until the operator
// resolves it. Never persisted.
type DuplicateCandidate struct {
	Existing   Event           `json:"existing"`
	Parsed     *ParsedData     `json:"parsed"`
	Content    PlatformContent `json:"content"`
	Similarity float64         `json:"similarity"`
}
