package dto

type SelectPlatformsRequest struct {
	Platforms []string `json:"platforms" binding:"required"`
}

type ToggleHashtagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

type EditParsedFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type EditContentFieldRequest struct {
	Platform string `json:"platform" binding:"required"`
	Field    string `json:"field" binding:"required"`
	Value    any    `json:"value"`
}

type RestoreEventRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

// UseExisting is a pointer so "false" still binds: resolving as a new event
// is a legitimate explicit choice, not an omitted field.
type ResolveDuplicateRequest struct {
	UseExisting *bool `json:"use_existing" binding:"required"`
}
