package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Health.Ping(ctx); err != nil {
		h.Log.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}
