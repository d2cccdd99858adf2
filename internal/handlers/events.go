package handlers

import (
	"net/http"

	"github.com/MLBB-BOSS/MLSnap/internal/bot"
	"github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"github.com/gin-gonic/gin"
)

// PostEvent runs one decoded chat event and returns the replies for the transport to
// relay. Rejected submissions are still 200: the reply carries the error code.
func (h *Handler) PostEvent(c *gin.Context) {
	var ev bot.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.Error(errors.InvalidEvent("Invalid event: " + err.Error()))
		return
	}

	replies, err := h.dispatcher.Dispatch(c.Request.Context(), ev)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}
