package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/domain"
	"promocast.app/engine/internal/publish"
)

// Publisher is the slice of the orchestrator the publish endpoints use.
type Publisher interface {
	Submit(ctx context.Context) (publish.Outcome, error)
	Session() *domain.PublishSession
	Statuses() map[string]domain.PlatformResult
}

type PublishHandler struct {
	publisher Publisher
}

func NewPublishHandler(publisher Publisher) *PublishHandler {
	return &PublishHandler{publisher: publisher}
}

func (h *PublishHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	outcome, err := h.publisher.Submit(ctx)
	if err != nil {
		switch {
		case errors.Is(err, publish.ErrNoFiles),
			errors.Is(err, publish.ErrNoPlatforms),
			errors.Is(err, publish.ErrNoEvent):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, publish.ErrPublishInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			slog.ErrorContext(ctx, "publish failed", "error", err)
			writeBackendError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// Results reports the latest per-platform delivery outcomes for the current
// publish session. The UI polls this while a publish is running.
func (h *PublishHandler) Results(c *gin.Context) {
	session := h.publisher.Session()
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no publish session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": session,
		"results": h.publisher.Statuses(),
	})
}
