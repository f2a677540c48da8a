package router

import (
	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/http/handler"
)

func PublishRouter(router *gin.RouterGroup, handler *handler.PublishHandler) {
	router.POST("", handler.Submit)
	router.GET("/results", handler.Results)
}
