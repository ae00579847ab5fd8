package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/storage"
)

type ParticipantHandler struct {
	Participants *storage.ParticipantService
}

func (h *ParticipantHandler) ListByConference(c *gin.Context) {
	id, ok := pathID(c, "conferenceId")
	if !ok {
		return
	}
	out, err := h.Participants.ListByConference(id)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list participants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching participants"})
		return
	}
	c.JSON(http.StatusOK, out)
}

type addParticipantRequest struct {
	ConferenceID string `json:"conferenceId" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Name         string `json:"name"`
}

func (h *ParticipantHandler) Add(c *gin.Context) {
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid conferenceId and email are required"})
		return
	}
	confID, err := strconv.ParseUint(req.ConferenceID, 10, 32)
	if err != nil || confID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid conferenceId and email are required"})
		return
	}

	if _, err := h.Participants.Add(uint(confID), req.Email, req.Name); err != nil {
		if errors.Is(err, storage.ErrDuplicateParticipant) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This participant is already added to the conference"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("add participant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding participant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participant added"})
}

func (h *ParticipantHandler) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Participants.Remove(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting participant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participant removed"})
}

func (h *ParticipantHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if err := h.Participants.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, storage.ErrBadStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

func (h *ParticipantHandler) UpdateName(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}
	if err := h.Participants.UpdateName(id, req.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating participant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participant updated"})
}

// Joined lists the conferences the logged-in user has joined.
func (h *ParticipantHandler) Joined(c *gin.Context) {
	p := currentPrincipal(c)
	out, err := h.Participants.JoinedByEmail(p.Email)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("joined conferences")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, out)
}
