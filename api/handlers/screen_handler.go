package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vidgrab/vidgrab/internal/app"
	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// ScreenHandler exposes the platform screens over HTTP
type ScreenHandler struct {
	shell  *app.Shell
	logger *zap.Logger
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(shell *app.Shell, logger *zap.Logger) *ScreenHandler {
	return &ScreenHandler{
		shell:  shell,
		logger: logger,
	}
}

// URLRequest carries a link typed or pasted by the user
type URLRequest struct {
	URL string `json:"url"`
}

// OpenRequest is a deep link into a screen
type OpenRequest struct {
	URL    string `json:"url" binding:"required"`
	Action string `json:"action"`
}

// PlatformEntry is one item of the platform menu
type PlatformEntry struct {
	domain.PlatformSpec
	ComingSoon bool `json:"coming_soon"`
}

// ListPlatforms handles GET /api/v1/platforms
func (h *ScreenHandler) ListPlatforms(c *gin.Context) {
	specs := h.shell.Platforms()
	entries := make([]PlatformEntry, 0, len(specs))
	for _, spec := range specs {
		entries = append(entries, PlatformEntry{PlatformSpec: spec, ComingSoon: !spec.Active})
	}
	c.JSON(http.StatusOK, gin.H{
		"platforms": entries,
		"dark_mode": h.shell.DarkMode(),
	})
}

// Validate handles GET /api/v1/validate?platform=&url=
func (h *ScreenHandler) Validate(c *gin.Context) {
	spec, err := domain.ParsePlatform(c.Query("platform"))
	if err != nil {
		respondError(c, err)
		return
	}

	raw := c.Query("url")
	response := gin.H{"valid": spec.IsValidURL(raw)}
	if verr := spec.Validate(raw); verr != nil && strings.TrimSpace(raw) != "" {
		response["message"] = domain.UserMessage(verr)
	}
	c.JSON(http.StatusOK, response)
}

// GetScreen handles GET /api/v1/screens/:platform
func (h *ScreenHandler) GetScreen(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, screen.Snapshot())
}

// Preview handles POST /api/v1/screens/:platform/preview
func (h *ScreenHandler) Preview(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	var req URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := screen.Preview(c.Request.Context(), req.URL); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, screen.Snapshot())
}

// Paste handles POST /api/v1/screens/:platform/paste
func (h *ScreenHandler) Paste(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	if err := screen.PasteAndPreview(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, screen.Snapshot())
}

// Quick handles POST /api/v1/screens/:platform/quick. Mobile user agents
// download the posted link right away; others paste and preview.
func (h *ScreenHandler) Quick(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	var req URLRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := screen.QuickAction(c.Request.Context(), req.URL, c.Request.UserAgent()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, screen.Snapshot())
}

// Open handles POST /api/v1/screens/:platform/open
func (h *ScreenHandler) Open(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := screen.Open(c.Request.Context(), req.URL, req.Action); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, screen.Snapshot())
}

// Download handles POST /api/v1/screens/:platform/download. An optional
// url in the body replaces the current link first.
func (h *ScreenHandler) Download(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	var req URLRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.URL != "" {
		screen.SetURL(req.URL)
	}

	if err := screen.Download(); err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("Download started via API",
		zap.String("platform", string(screen.Spec().Platform)),
		zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusAccepted, screen.Snapshot())
}

// Copy handles POST /api/v1/screens/:platform/copy
func (h *ScreenHandler) Copy(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	if err := screen.CopyLink(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, screen.Snapshot())
}

// Back handles POST /api/v1/screens/:platform/back
func (h *ScreenHandler) Back(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	screen.Back()
	c.JSON(http.StatusOK, screen.Snapshot())
}

// Events handles GET /api/v1/screens/:platform/events as a server-sent
// event stream of snapshots
func (h *ScreenHandler) Events(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}
	updates, unsubscribe := screen.Subscribe()
	defer unsubscribe()

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, open := <-updates:
			if !open {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// screen resolves the :platform parameter, writing the error response
// when navigation is refused
func (h *ScreenHandler) screen(c *gin.Context) (*app.Screen, bool) {
	screen, err := h.shell.ScreenByName(c.Param("platform"))
	if err != nil {
		if toast := h.shell.Toast(); toast != nil && statusFor(err) == http.StatusConflict {
			c.JSON(http.StatusConflict, gin.H{"error": toast.Message})
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}
	return screen, true
}

// bindOptionalJSON accepts an empty body
func bindOptionalJSON(c *gin.Context, v interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
