package router

import (
	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/http/handler"
)

func WorkspaceRouter(router *gin.RouterGroup, handler *handler.WorkspaceHandler) {
	router.GET("", handler.State)
	router.POST("/initialize", handler.Initialize)
	router.PUT("/platforms", handler.SelectPlatforms)
	router.PUT("/hashtags", handler.ToggleHashtag)
	router.PATCH("/parsed-data", handler.EditParsedField)
	router.PATCH("/content", handler.EditContentField)
	router.POST("/files", handler.Upload)
	router.POST("/restore", handler.Restore)
	router.POST("/new", handler.NewEvent)
	router.POST("/resolve-duplicate", handler.ResolveDuplicate)
	router.POST("/template/preview", handler.PreviewTemplate)
}
