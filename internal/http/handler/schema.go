package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promocast.app/engine/internal/schema"
)

type SchemaHandler struct{}

func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

// PlatformContent serves the field schema the browser-side form renderer
// builds its editors from.
func (h *SchemaHandler) PlatformContent(c *gin.Context) {
	c.JSON(http.StatusOK, schema.PlatformContent())
}
