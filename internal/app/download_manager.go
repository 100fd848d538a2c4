package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/vidgrab/vidgrab/internal/domain"
	"github.com/vidgrab/vidgrab/internal/metrics"
	"go.uber.org/zap"
)

// ReconnectPolicy bounds automatic reconnects after the stream drops
type ReconnectPolicy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	MaxAttempts  int
}

// ReconnectPolicyFromConfig builds a policy from the download config
func ReconnectPolicyFromConfig(config *domain.DownloadConfig) ReconnectPolicy {
	return ReconnectPolicy{
		InitialDelay: config.RetryDelay,
		Multiplier:   config.RetryMultiplier,
		MaxDelay:     config.MaxRetryDelay,
		MaxAttempts:  config.MaxReconnects,
	}
}

func (p ReconnectPolicy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	attempts := p.MaxAttempts
	if attempts < 0 {
		attempts = 0
	}
	return backoff.WithMaxRetries(b, uint64(attempts))
}

// DownloadOutcome is how a download run ended
type DownloadOutcome string

const (
	OutcomeSaved     DownloadOutcome = "saved"
	OutcomeFallback  DownloadOutcome = "fallback"
	OutcomeFailed    DownloadOutcome = "failed"
	OutcomeCancelled DownloadOutcome = "cancelled"
)

// DownloadResult is the final report of a run
type DownloadResult struct {
	Outcome     DownloadOutcome
	FilePath    string
	FallbackURL string
	Token       string
	Attempts    int
	Err         error
}

// DownloadObserver receives the progress of one run. Calls are serialized
// and DownloadFinished is always the last one.
type DownloadObserver interface {
	DownloadStarted(attempt int)
	DownloadProgress(percent int)
	DownloadRetrying(attempt int, delay time.Duration, err error)
	DownloadFinished(result DownloadResult)
}

// DownloadHandle controls a running download
type DownloadHandle struct {
	ID      string
	Request domain.DownloadRequest

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	result DownloadResult
}

// Cancel stops the run; the observer sees OutcomeCancelled
func (h *DownloadHandle) Cancel() {
	h.cancel()
}

// Done is closed when the run has finished
func (h *DownloadHandle) Done() <-chan struct{} {
	return h.done
}

// Result blocks until the run finishes and returns its report
func (h *DownloadHandle) Result() DownloadResult {
	<-h.done
	return h.result
}

func (h *DownloadHandle) finish(result DownloadResult) {
	h.once.Do(func() {
		h.result = result
		close(h.done)
	})
}

// DownloadManager runs download streams and handles their terminal messages
type DownloadManager struct {
	backend      domain.Backend
	saver        domain.ArtifactSaver
	opener       domain.LinkOpener
	policy       ReconnectPolicy
	openFallback bool
	logger       *zap.Logger
}

// NewDownloadManager creates a new download manager
func NewDownloadManager(
	backend domain.Backend,
	saver domain.ArtifactSaver,
	opener domain.LinkOpener,
	config *domain.DownloadConfig,
	logger *zap.Logger,
) *DownloadManager {
	return &DownloadManager{
		backend:      backend,
		saver:        saver,
		opener:       opener,
		policy:       ReconnectPolicyFromConfig(config),
		openFallback: config.OpenFallback,
		logger:       logger,
	}
}

// Start validates the request and runs it in the background. ctx bounds the
// whole run including reconnect waits. No stream is opened for an invalid URL.
func (dm *DownloadManager) Start(ctx context.Context, spec domain.PlatformSpec, req domain.DownloadRequest, observer DownloadObserver) (*DownloadHandle, error) {
	if !spec.Active {
		return nil, domain.ErrPlatformUnavailable
	}
	if err := spec.Validate(req.URL); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	handle := &DownloadHandle{
		ID:      uuid.New().String(),
		Request: req,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	dm.logger.Info("Starting download",
		zap.String("id", handle.ID),
		zap.String("platform", string(spec.Platform)),
		zap.String("url", req.URL))
	metrics.DownloadsStarted.WithLabelValues(string(spec.Platform)).Inc()

	go dm.run(runCtx, handle, spec, observer)
	return handle, nil
}

func (dm *DownloadManager) run(ctx context.Context, handle *DownloadHandle, spec domain.PlatformSpec, observer DownloadObserver) {
	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()
	defer handle.cancel()

	finish := func(result DownloadResult) {
		metrics.DownloadOutcomes.WithLabelValues(string(spec.Platform), string(result.Outcome)).Inc()
		observer.DownloadFinished(result)
		handle.finish(result)
	}

	b := dm.policy.newBackOff()
	reconnects := 0

	for {
		observer.DownloadStarted(reconnects)

		progress, result, err := dm.attempt(ctx, spec, handle.Request, observer)
		if result != nil {
			result.Attempts = reconnects
			dm.logResult(handle, *result)
			finish(*result)
			return
		}

		if ctx.Err() != nil {
			finish(DownloadResult{Outcome: OutcomeCancelled, Attempts: reconnects, Err: ctx.Err()})
			return
		}

		// the backend already produced the file; reconnecting would redo the work
		if progress >= 100 {
			transportErr := &domain.StreamTransportError{Attempts: reconnects, Err: err}
			dm.logResult(handle, DownloadResult{Outcome: OutcomeFailed, Err: transportErr})
			finish(DownloadResult{Outcome: OutcomeFailed, Attempts: reconnects, Err: transportErr})
			return
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			transportErr := &domain.StreamTransportError{Attempts: reconnects, Err: err}
			dm.logResult(handle, DownloadResult{Outcome: OutcomeFailed, Err: transportErr})
			finish(DownloadResult{Outcome: OutcomeFailed, Attempts: reconnects, Err: transportErr})
			return
		}

		reconnects++
		metrics.StreamReconnects.WithLabelValues(string(spec.Platform)).Inc()
		dm.logger.Warn("Progress stream lost, reconnecting",
			zap.String("id", handle.ID),
			zap.Int("attempt", reconnects),
			zap.Duration("delay", delay),
			zap.Int("progress", progress),
			zap.Error(err))
		observer.DownloadRetrying(reconnects, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			finish(DownloadResult{Outcome: OutcomeCancelled, Attempts: reconnects, Err: ctx.Err()})
			return
		case <-timer.C:
		}
	}
}

// attempt consumes one stream connection. It returns a result when a
// terminal message arrived, otherwise the last progress and the transport error.
func (dm *DownloadManager) attempt(ctx context.Context, spec domain.PlatformSpec, req domain.DownloadRequest, observer DownloadObserver) (int, *DownloadResult, error) {
	stream, err := dm.backend.OpenStream(ctx, spec, req)
	if err != nil {
		return 0, nil, err
	}
	defer stream.Close()

	stop := context.AfterFunc(ctx, func() { stream.Close() })
	defer stop()

	progress := 0
	for {
		event, err := stream.Next()
		if err != nil {
			return progress, nil, err
		}

		switch event.Kind {
		case domain.EventProgress:
			progress = event.Percent
			observer.DownloadProgress(progress)

		case domain.EventDone:
			observer.DownloadProgress(100)
			stream.Close()
			return 100, dm.save(ctx, spec, req, event.Token), nil

		case domain.EventError:
			return progress, &DownloadResult{
				Outcome: OutcomeFailed,
				Err:     &domain.BackendError{Message: event.Message},
			}, nil

		case domain.EventFallback:
			if !spec.AllowFallback {
				dm.logger.Debug("Ignoring fallback message",
					zap.String("platform", string(spec.Platform)),
					zap.String("url", event.URL))
				continue
			}
			stream.Close()
			if dm.openFallback {
				if err := dm.opener.Open(event.URL); err != nil {
					dm.logger.Warn("Failed to open fallback link",
						zap.String("url", event.URL),
						zap.Error(err))
				}
			}
			return progress, &DownloadResult{Outcome: OutcomeFallback, FallbackURL: event.URL}, nil
		}
	}
}

func (dm *DownloadManager) save(ctx context.Context, spec domain.PlatformSpec, req domain.DownloadRequest, token string) *DownloadResult {
	// without a title the backend's suggested filename beats the bare token
	name := ""
	if req.SanitizedTitle != "" {
		name = domain.SaveName(req.SanitizedTitle, token)
	}
	path, err := dm.saver.Save(ctx, dm.backend.ArtifactURL(spec, token), name, domain.SaveName("", token))
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return &DownloadResult{Outcome: OutcomeCancelled, Token: token, Err: err}
		}
		return &DownloadResult{Outcome: OutcomeFailed, Token: token, Err: &domain.SaveError{Token: token, Err: err}}
	}
	return &DownloadResult{Outcome: OutcomeSaved, Token: token, FilePath: path}
}

func (dm *DownloadManager) logResult(handle *DownloadHandle, result DownloadResult) {
	switch result.Outcome {
	case OutcomeSaved:
		dm.logger.Info("Download completed",
			zap.String("id", handle.ID),
			zap.String("url", handle.Request.URL),
			zap.String("file", result.FilePath))
	case OutcomeFallback:
		dm.logger.Info("Download handed to browser",
			zap.String("id", handle.ID),
			zap.String("url", handle.Request.URL),
			zap.String("fallback_url", result.FallbackURL))
	case OutcomeCancelled:
		dm.logger.Info("Download cancelled", zap.String("id", handle.ID))
	default:
		dm.logger.Error("Download failed",
			zap.String("id", handle.ID),
			zap.String("url", handle.Request.URL),
			zap.Error(result.Err))
	}
}
