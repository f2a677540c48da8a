package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/workspace"
)

// SettingsStore is the slice of the store the settings endpoints use.
type SettingsStore interface {
	State() workspace.State
	UpdateAppConfig(ctx context.Context, cfg map[string]any) error
	UpdatePlatformPreferences(ctx context.Context, prefs map[string]any) error
}

type SettingsHandler struct {
	store SettingsStore
}

func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

func (h *SettingsHandler) GetAppConfig(c *gin.Context) {
	cfg := h.store.State().AppConfig
	if cfg == nil {
		cfg = map[string]any{}
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *SettingsHandler) UpdateAppConfig(c *gin.Context) {
	ctx := c.Request.Context()

	var cfg map[string]any
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UpdateAppConfig(ctx, cfg); err != nil {
		slog.ErrorContext(ctx, "app config update failed", "error", err)
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *SettingsHandler) GetPlatformPreferences(c *gin.Context) {
	prefs := h.store.State().Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *SettingsHandler) UpdatePlatformPreferences(c *gin.Context) {
	ctx := c.Request.Context()

	var prefs map[string]any
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UpdatePlatformPreferences(ctx, prefs); err != nil {
		slog.ErrorContext(ctx, "platform preferences update failed", "error", err)
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
