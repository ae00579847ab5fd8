package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/storage"
)

type ConferenceHandler struct {
	Conferences *storage.ConferenceService
}

type conferenceRequest struct {
	Title       string    `json:"title" binding:"required"`
	Datetime    time.Time `json:"datetime" binding:"required"`
	Duration    int       `json:"duration" binding:"required"`
	Description string    `json:"description" binding:"required"`
	HostEmail   string    `json:"hostEmail"`
}

func (h *ConferenceHandler) Create(c *gin.Context) {
	var req conferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.HostEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required, including hostEmail."})
		return
	}
	conf, err := h.Conferences.Create(req.Title, req.Datetime, req.Duration, req.Description, req.HostEmail)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create conference")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conference created successfully.", "id": conf.ID})
}

func (h *ConferenceHandler) All(c *gin.Context) {
	out, err := h.Conferences.All()
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list conferences")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ConferenceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	conf, err := h.Conferences.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Conference not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, conf)
}

func (h *ConferenceHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req conferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid conference payload"})
		return
	}
	if err := h.Conferences.Update(id, req.Title, req.Datetime, req.Duration, req.Description); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("update conference")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated successfully"})
}

func (h *ConferenceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Conferences.Delete(id); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("delete conference")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
