package handlers

import (
	"net/http"

	"classroom-api/internal/services"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthService *services.HealthService
}

func NewHealthHandler(healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

func (h *HealthHandler) Check(c *gin.Context) {
	statuses := h.healthService.Check(c.Request.Context())

	code := http.StatusOK
	for _, s := range statuses {
		if s.Status != "ok" {
			code = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, gin.H{"status": statuses})
}
