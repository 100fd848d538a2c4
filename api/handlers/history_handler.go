package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidgrab/vidgrab/internal/app"
	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// HistoryHandler serves the download history and preferences
type HistoryHandler struct {
	shell  *app.Shell
	logger *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(shell *app.Shell, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		shell:  shell,
		logger: logger,
	}
}

// ListHistory handles GET /api/v1/history
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	filter := domain.HistoryFilter{
		Platform: domain.Platform(c.Query("platform")),
		Status:   domain.HistoryStatus(c.Query("status")),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	entries, err := h.shell.History(filter)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Error(err))
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []*domain.HistoryEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// GetStats handles GET /api/v1/history/stats
func (h *HistoryHandler) GetStats(c *gin.Context) {
	stats, err := h.shell.HistoryStats()
	if err != nil {
		h.logger.Error("Failed to get history stats", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DeleteHistory handles DELETE /api/v1/history/:id
func (h *HistoryHandler) DeleteHistory(c *gin.Context) {
	if err := h.shell.DeleteHistory(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry deleted"})
}

// ThemeRequest sets the dark mode flag
type ThemeRequest struct {
	DarkMode *bool `json:"dark_mode" binding:"required"`
}

// GetTheme handles GET /api/v1/preferences/theme
func (h *HistoryHandler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dark_mode": h.shell.DarkMode()})
}

// SetTheme handles PUT /api/v1/preferences/theme
func (h *HistoryHandler) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.shell.SetDarkMode(*req.DarkMode)
	c.JSON(http.StatusOK, gin.H{"dark_mode": h.shell.DarkMode()})
}
