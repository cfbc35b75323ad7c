package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	environment string
	started     time.Time
	now         func() time.Time
}

func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{environment: environment, started: time.Now(), now: time.Now}
}

func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
}

// Health reports liveness
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  object{status=string,timestamp=string,uptime=number,environment=string}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"timestamp":   now.UTC().Format(time.RFC3339),
		"uptime":      now.Sub(h.started).Seconds(),
		"environment": h.environment,
	})
}
