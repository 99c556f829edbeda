package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	version     string
	generatorOn bool
}

// NewHealthHandler reports the build version and whether content generation
// is configured; rendering supplied content works either way.
func NewHealthHandler(version string, generatorOn bool) *HealthHandler {
	return &HealthHandler{version: version, generatorOn: generatorOn}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"generator": h.generatorOn,
	})
}
