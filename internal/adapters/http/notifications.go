package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/storage"
)

type NotificationHandler struct {
	Notifications *storage.NotificationService
}

func (h *NotificationHandler) UnseenUpcoming(c *gin.Context) {
	p := currentPrincipal(c)
	unseen, err := h.Notifications.UnseenUpcoming(uint(p.ID), time.Now())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("unseen upcoming")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unseen": unseen})
}

func (h *NotificationHandler) MarkSeen(c *gin.Context) {
	p := currentPrincipal(c)
	var req struct {
		SeenIDs []uint `json:"seenIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.SeenIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No IDs provided"})
		return
	}
	if err := h.Notifications.MarkSeen(uint(p.ID), req.SeenIDs); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("mark seen")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as seen"})
}
