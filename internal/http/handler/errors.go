package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/backend"
)

// writeBackendError maps a backend failure onto the local API response. The
// UI shows the message verbatim, so backend validation detail is preferred
// over anything synthesized here.
func writeBackendError(c *gin.Context, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": apiErr.UserMessage()})
		return
	}
	if errors.Is(err, backend.ErrUnreachable) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "cannot reach the promotion backend; check that it is running"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
