// Package handlers exposes the read-only operational endpoints: channel
// watermarks and recent feedback rows.
package handlers

import (
	"net/http"
	"strconv"

	"omni-feedback/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatusHandler serves pipeline status endpoints
type StatusHandler struct {
	db *gorm.DB
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *gorm.DB) *StatusHandler {
	return &StatusHandler{db: db}
}

// HealthCheck reports process and database liveness
func (h *StatusHandler) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListChannels returns all channels with their ingestion watermarks
func (h *StatusHandler) ListChannels(c *gin.Context) {
	var channels []models.Channel
	if err := h.db.Order("name").Find(&channels).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// ChannelFeedback returns the most recent feedback rows for one channel
func (h *StatusHandler) ChannelFeedback(c *gin.Context) {
	name := c.Param("name")

	var channel models.Channel
	if err := h.db.Where("name = ?", name).First(&channel).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 20
	}

	var feedback []models.Feedback
	if err := h.db.Where("channel_id = ?", channel.ID).
		Order("review_created_at DESC").
		Limit(limit).
		Find(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channel":  channel.Name,
		"count":    len(feedback),
		"feedback": feedback,
	})
}
