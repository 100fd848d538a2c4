package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidgrab/vidgrab/internal/domain"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var previewErr *domain.PreviewError
	switch {
	case errors.Is(err, domain.ErrInvalidURL), errors.Is(err, domain.ErrNothingToCopy):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownPlatform), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPlatformUnavailable), errors.Is(err, domain.ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &previewErr):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrClipboardUnavailable), errors.Is(err, domain.ErrScreenClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": domain.UserMessage(err)})
}
