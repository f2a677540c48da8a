package router

import (
	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/http/handler"
)

// Handlers bundles the constructed handlers the route tree mounts.
type Handlers struct {
	Workspace *handler.WorkspaceHandler
	Publish   *handler.PublishHandler
	Settings  *handler.SettingsHandler
	History   *handler.HistoryHandler
	Schema    *handler.SchemaHandler
}

func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		WorkspaceRouter(v1.Group("/workspace"), h.Workspace)
		PublishRouter(v1.Group("/publish"), h.Publish)
		SettingsRouter(v1.Group("/settings"), h.Settings)

		v1.GET("/history", h.History.List)
		v1.GET("/schemas/platform-content", h.Schema.PlatformContent)
	}
}
