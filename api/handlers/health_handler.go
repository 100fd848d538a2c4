package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidgrab/vidgrab/internal/domain"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// ReadinessChecker reports whether the client can serve requests
type ReadinessChecker interface {
	Ready() error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	checker ReadinessChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		checker: checker,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Platforms []string `json:"platforms"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	for _, spec := range domain.Platforms() {
		if spec.Active {
			response.Platforms = append(response.Platforms, string(spec.Platform))
		}
	}

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.checker.Ready(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
