package router

import (
	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/http/handler"
)

func SettingsRouter(router *gin.RouterGroup, handler *handler.SettingsHandler) {
	router.GET("/app", handler.GetAppConfig)
	router.PUT("/app", handler.UpdateAppConfig)
	router.GET("/platforms", handler.GetPlatformPreferences)
	router.PUT("/platforms", handler.UpdatePlatformPreferences)
}
