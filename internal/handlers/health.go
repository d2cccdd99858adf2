package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/database"
	"github.com/gin-gonic/gin"
)

// Health reports database and Redis status. Redis is optional, so only a database
// failure makes the service unavailable.
func (h *Handler) Health(c *gin.Context) {
	dbStatus := "ok"
	redisStatus := "ok"

	if err := database.Ping(h.db); err != nil {
		dbStatus = "error"
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if _, err := h.redis.Ping(ctx).Result(); err != nil {
			redisStatus = "error"
		}
	} else {
		redisStatus = "not configured"
	}

	status := "ok"
	code := http.StatusOK
	if dbStatus != "ok" {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	} else if redisStatus == "error" {
		status = "degraded"
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
