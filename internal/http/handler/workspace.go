package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/backend"
	"promocast.app/engine/internal/http/dto"
	"promocast.app/engine/internal/template"
	"promocast.app/engine/internal/workspace"
)

// WorkspaceStore is the slice of the store the workspace endpoints use.
type WorkspaceStore interface {
	State() workspace.State
	Initialize(ctx context.Context) error
	SelectPlatforms(platforms []string)
	ToggleHashtag(tag string)
	SetParsedField(name, value string) error
	SetPlatformField(platform, field string, value any)
	UploadFiles(ctx context.Context, files []backend.Upload) error
	RestoreEvent(ctx context.Context, eventID string) error
	NewEvent()
	ResolveDuplicate(ctx context.Context, useExisting bool) error
	TemplateVariables() template.VariableSet
}

type WorkspaceHandler struct {
	store WorkspaceStore
}

func NewWorkspaceHandler(store WorkspaceStore) *WorkspaceHandler {
	return &WorkspaceHandler{store: store}
}

func (h *WorkspaceHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.State())
}

func (h *WorkspaceHandler) Initialize(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.store.Initialize(ctx); err != nil {
		slog.ErrorContext(ctx, "workspace initialization failed", "error", err)
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.State())
}

func (h *WorkspaceHandler) SelectPlatforms(c *gin.Context) {
	var req dto.SelectPlatformsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.store.SelectPlatforms(req.Platforms)
	c.JSON(http.StatusOK, h.store.State())
}

func (h *WorkspaceHandler) ToggleHashtag(c *gin.Context) {
	var req dto.ToggleHashtagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.store.ToggleHashtag(req.Tag)
	c.JSON(http.StatusOK, h.store.State())
}

func (h *WorkspaceHandler) EditParsedField(c *gin.Context) {
	var req dto.EditParsedFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SetParsedField(req.Field, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.store.State())
}

func (h *WorkspaceHandler) EditContentField(c *gin.Context) {
	var req dto.EditContentFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.store.SetPlatformField(req.Platform, req.Field, req.Value)
	c.JSON(http.StatusOK, h.store.State())
}

// Upload accepts a multipart batch from the browser and passes it through to
// the backend untouched. The engine never interprets file bytes.
func (h *WorkspaceHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files in request"})
		return
	}

	uploads := make([]backend.Upload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		uploads = append(uploads, backend.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	if err := h.store.UploadFiles(ctx, uploads); err != nil {
		slog.ErrorContext(ctx, "file upload failed", "error", err, "files", len(uploads))
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.State())
}

func (h *WorkspaceHandler) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RestoreEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.RestoreEvent(ctx, req.EventID); err != nil {
		slog.ErrorContext(ctx, "event restore failed", "error", err, "event_id", req.EventID)
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.State())
}

func (h *WorkspaceHandler) NewEvent(c *gin.Context) {
	h.store.NewEvent()
	c.JSON(http.StatusOK, h.store.State())
}

func (h *WorkspaceHandler) ResolveDuplicate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ResolveDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.ResolveDuplicate(ctx, *req.UseExisting); err != nil {
		if errors.Is(err, workspace.ErrNoCandidate) {
			c.JSON(http.StatusConflict, gin.H{"error": "no duplicate candidate to resolve"})
			return
		}
		slog.ErrorContext(ctx, "duplicate resolution failed", "error", err)
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.State())
}

func (h *WorkspaceHandler) PreviewTemplate(c *gin.Context) {
	var req dto.TemplatePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vars := h.store.TemplateVariables()
	resp := dto.TemplatePreviewResponse{
		Rendered:   template.Substitute(req.Template, vars),
		Unresolved: template.Unresolved(req.Template, vars),
	}
	if resp.Unresolved == nil {
		resp.Unresolved = []string{}
	}
	c.JSON(http.StatusOK, resp)
}
