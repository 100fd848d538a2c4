package app

import (
	"context"
	"time"

	"github.com/vidgrab/vidgrab/internal/domain"
	"github.com/vidgrab/vidgrab/internal/metrics"
	"go.uber.org/zap"
)

// Previewer validates a link and asks the backend for its preview
type Previewer struct {
	backend domain.Backend
	logger  *zap.Logger
}

// NewPreviewer creates a new previewer
func NewPreviewer(backend domain.Backend, logger *zap.Logger) *Previewer {
	return &Previewer{backend: backend, logger: logger}
}

// Preview returns preview metadata for raw. Invalid links fail before any
// request is made.
func (p *Previewer) Preview(ctx context.Context, spec domain.PlatformSpec, raw string) (*domain.PreviewResult, error) {
	if !spec.Active {
		return nil, domain.ErrPlatformUnavailable
	}
	if err := spec.Validate(raw); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := p.backend.Preview(ctx, spec, spec.CleanURL(raw))
	metrics.PreviewDuration.WithLabelValues(string(spec.Platform)).Observe(time.Since(start).Seconds())

	if err == nil && (result == nil || result.MediaURL == "") {
		err = &domain.PreviewError{Reason: domain.PreviewMissingMedia}
	}
	if err != nil {
		metrics.PreviewsTotal.WithLabelValues(string(spec.Platform), "failed").Inc()
		p.logger.Warn("Preview failed",
			zap.String("platform", string(spec.Platform)),
			zap.String("url", raw),
			zap.Error(err))
		return nil, err
	}

	metrics.PreviewsTotal.WithLabelValues(string(spec.Platform), "ok").Inc()
	p.logger.Info("Preview ready",
		zap.String("platform", string(spec.Platform)),
		zap.String("url", raw),
		zap.String("title", result.Title))
	return result, nil
}
