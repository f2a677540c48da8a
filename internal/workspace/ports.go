package workspace

import (
	"context"

	"promocast.app/engine/internal/backend"
	"promocast.app/engine/internal/domain"
	"promocast.app/engine/internal/template"
)

// Backend is the slice of the backend client the store depends on.
type Backend interface {
	LoadWorkspace(ctx context.Context) domain.WorkspaceSnapshot
	SaveWorkspace(ctx context.Context, snap domain.WorkspaceSnapshot) error
	RestoreSnapshot(ctx context.Context, eventID string) (domain.RestoredWorkspace, error)
	LoadParsedData(ctx context.Context, eventID string) (*domain.ParsedData, error)
	SaveParsedData(ctx context.Context, eventID string, parsed *domain.ParsedData) error
	LoadPlatformContent(ctx context.Context, eventID string) (domain.PlatformContent, error)
	SavePlatformContent(ctx context.Context, eventID string, content domain.PlatformContent) error
	UploadFiles(ctx context.Context, files []backend.Upload) (backend.UploadResult, error)
	ValidateFileRefs(ctx context.Context, refs []domain.FileReference) []domain.FileReference
	LoadAppConfig(ctx context.Context) (map[string]any, error)
	SaveAppConfig(ctx context.Context, cfg map[string]any) error
	LoadPlatformPreferences(ctx context.Context) (map[string]any, error)
	SavePlatformPreferences(ctx context.Context, prefs map[string]any) error
	LoadHashtagGroups(ctx context.Context) (map[string][]string, error)
}

// ContentGenerator produces a platform's initial field bag from resolved
// template variables. The real generation heuristics are externally
// supplied; the engine only defines the port.
type ContentGenerator interface {
	Generate(platform string, vars template.VariableSet) domain.FieldBag
}
