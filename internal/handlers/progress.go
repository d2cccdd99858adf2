package handlers

import (
	"net/http"
	"strconv"

	"github.com/MLBB-BOSS/MLSnap/internal/bot"
	"github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the top contributors, ?n= defaults to 10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	n := bot.DefaultLeaderboardSize
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.Error(errors.InvalidEvent("n must be an integer"))
			return
		}
		n = parsed
	}

	entries, err := h.reporter.Leaderboard(c.Request.Context(), n)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// GetUserProgress returns a user's totals, per-item counts and badges.
func (h *Handler) GetUserProgress(c *gin.Context) {
	progress, err := h.reporter.UserProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// GetUserHistogram returns contributions per calendar date.
func (h *Handler) GetUserHistogram(c *gin.Context) {
	days, err := h.reporter.ActivityHistogram(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": c.Param("id"), "days": days})
}
