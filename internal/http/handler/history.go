package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/domain"
)

// HistoryLister lists past publishes from the backend.
type HistoryLister interface {
	ListHistory(ctx context.Context) ([]domain.HistoryEntry, error)
}

type HistoryHandler struct {
	backend HistoryLister
}

func NewHistoryHandler(backend HistoryLister) *HistoryHandler {
	return &HistoryHandler{backend: backend}
}

func (h *HistoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := h.backend.ListHistory(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "history listing failed", "error", err)
		writeBackendError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}
