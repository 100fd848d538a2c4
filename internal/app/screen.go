package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// User-facing texts of a screen
const (
	msgDownloaded     = "Video downloaded successfully!"
	msgFallback       = "The server could not fetch this video, so the link was opened for manual download."
	msgReconnecting   = "Lost connection to server, retrying..."
	msgClipboardRead  = "Cannot read clipboard!"
	msgCopyFailed     = "Cannot copy link!"
	msgCopied         = "Link copied!"
	msgUnknownAction  = "Unknown action"
	actionPreview     = "preview"
	actionDownload    = "download"
	subscriberBacklog = 1
)

// ScreenDeps are the collaborators of a platform screen
type ScreenDeps struct {
	Previewer    *Previewer
	Downloads    *DownloadManager
	Clipboard    domain.ClipboardPort
	Device       domain.DeviceClassifier
	History      domain.HistoryRepository
	Notifier     domain.Notifier
	CopyToastTTL time.Duration
	Logger       *zap.Logger
}

// Screen is the session controller of one platform. It owns at most one
// preview request and one download run at a time.
type Screen struct {
	spec         domain.PlatformSpec
	previewer    *Previewer
	downloads    *DownloadManager
	clipboard    domain.ClipboardPort
	device       domain.DeviceClassifier
	history      domain.HistoryRepository
	notifier     domain.Notifier
	copyToastTTL time.Duration
	logger       *zap.Logger
	toast        *ToastPresenter

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu            sync.Mutex
	snap          domain.Snapshot
	previewGen    uint64
	previewCancel context.CancelFunc
	downloadGen   uint64
	download      *DownloadHandle
	subscribers   map[int]chan domain.Snapshot
	nextSub       int
	closed        bool
}

// NewScreen creates an idle screen for spec
func NewScreen(spec domain.PlatformSpec, deps ScreenDeps) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Screen{
		spec:         spec,
		previewer:    deps.Previewer,
		downloads:    deps.Downloads,
		clipboard:    deps.Clipboard,
		device:       deps.Device,
		history:      deps.History,
		notifier:     deps.Notifier,
		copyToastTTL: deps.CopyToastTTL,
		logger:       deps.Logger.With(zap.String("platform", string(spec.Platform))),
		baseCtx:      ctx,
		baseCancel:   cancel,
		subscribers:  make(map[int]chan domain.Snapshot),
	}
	s.toast = NewToastPresenter(s.publish)
	s.snap = s.idleSnapshot()
	return s
}

// Spec returns the platform this screen serves
func (s *Screen) Spec() domain.PlatformSpec {
	return s.spec
}

func (s *Screen) idleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		SessionID: uuid.New().String(),
		Platform:  s.spec.Platform,
		State:     domain.StateIdle,
	}
}

// Validate reports whether raw is accepted; it performs no I/O
func (s *Screen) Validate(raw string) bool {
	return s.spec.IsValidURL(raw)
}

// SetURL replaces the input link without starting any request. A preview
// fetched for a different link is discarded, and one in flight is abandoned.
func (s *Screen) SetURL(raw string) {
	raw = strings.TrimSpace(raw)
	s.mu.Lock()
	if raw != s.snap.URL {
		s.dropPreviewLocked()
	}
	s.snap.URL = raw
	s.mu.Unlock()
	s.publish()
}

// Preview validates raw and fetches its preview. A newer preview or a Back
// supersedes this one, which then returns ErrSuperseded.
func (s *Screen) Preview(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if err := s.checkUsable(); err != nil {
		return err
	}

	if err := s.spec.Validate(raw); err != nil {
		s.mu.Lock()
		if raw != s.snap.URL {
			s.dropPreviewLocked()
		}
		s.snap.URL = raw
		s.snap.Error = domain.UserMessage(err)
		s.snap.Success = ""
		s.mu.Unlock()
		s.publish()
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrScreenClosed
	}
	s.cancelLocked()
	s.previewGen++
	gen := s.previewGen
	previewCtx, cancel := context.WithCancel(ctx)
	s.previewCancel = cancel

	s.snap = s.freshLocked(raw)
	s.snap.State = domain.StatePreviewing
	s.mu.Unlock()
	s.publish()

	result, err := s.previewer.Preview(previewCtx, s.spec, raw)
	cancel()

	s.mu.Lock()
	if gen != s.previewGen || s.closed {
		s.mu.Unlock()
		return domain.ErrSuperseded
	}
	s.previewCancel = nil
	if err != nil {
		s.snap.State = domain.StateIdle
		s.snap.Error = domain.UserMessage(err)
	} else {
		s.snap.State = domain.StatePreviewed
		s.snap.Preview = result
	}
	s.mu.Unlock()
	s.publish()
	return err
}

// PasteAndPreview previews whatever link is on the clipboard
func (s *Screen) PasteAndPreview(ctx context.Context) error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	text, err := s.clipboard.ReadText()
	if err != nil {
		s.setError(msgClipboardRead)
		return err
	}
	return s.Preview(ctx, text)
}

// QuickAction is the one-tap entry: mobile clients download raw directly,
// desktop clients paste and preview
func (s *Screen) QuickAction(ctx context.Context, raw, userAgent string) error {
	if s.device != nil && s.device.IsMobile(userAgent) {
		if raw != "" {
			s.SetURL(raw)
		}
		return s.Download()
	}
	return s.PasteAndPreview(ctx)
}

// Open handles a deep link carrying a URL and an action
func (s *Screen) Open(ctx context.Context, raw, action string) error {
	switch action {
	case actionPreview, "":
		return s.Preview(ctx, raw)
	case actionDownload:
		if err := s.Preview(ctx, raw); err != nil {
			return err
		}
		return s.Download()
	default:
		s.setError(msgUnknownAction)
		return fmt.Errorf("unknown action %q", action)
	}
}

// Download starts a run for the current link. Any running preview or
// download of this screen is cancelled first.
func (s *Screen) Download() error {
	if err := s.checkUsable(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrScreenClosed
	}
	raw := s.snap.URL
	if err := s.spec.Validate(raw); err != nil {
		s.snap.Error = domain.UserMessage(err)
		s.snap.Success = ""
		s.mu.Unlock()
		s.publish()
		return err
	}

	title := ""
	if s.snap.Preview != nil {
		title = s.snap.Preview.Title
	}
	preview := s.snap.Preview

	s.cancelLocked()
	s.downloadGen++
	gen := s.downloadGen

	s.snap = s.freshLocked(raw)
	s.snap.Preview = preview
	s.snap.State = domain.StateDownloading

	req := domain.NewDownloadRequest(s.spec, raw, title)
	observer := &screenObserver{screen: s, gen: gen, req: req, title: title}
	handle, err := s.downloads.Start(s.baseCtx, s.spec, req, observer)
	if err != nil {
		s.snap.State = domain.StateFailed
		s.snap.Error = domain.UserMessage(err)
		s.mu.Unlock()
		s.publish()
		return err
	}
	s.download = handle
	s.mu.Unlock()
	s.publish()
	return nil
}

// CopyLink puts the preview media URL, or the input link, on the clipboard.
// Platforms with CopyInputURL always copy the input link.
func (s *Screen) CopyLink() error {
	s.mu.Lock()
	target := ""
	if !s.spec.CopyInputURL {
		target = s.snap.Preview.CopyTarget()
	}
	if target == "" {
		target = strings.TrimSpace(s.snap.URL)
	}
	s.mu.Unlock()

	if target == "" {
		s.setError(msgCopyFailed)
		return domain.ErrNothingToCopy
	}
	if err := s.clipboard.WriteText(target); err != nil {
		s.setError(msgCopyFailed)
		return err
	}
	s.toast.Show(domain.ToastSuccess, msgCopied, s.copyToastTTL)
	return nil
}

// Back cancels any request and resets the screen to a fresh idle session
func (s *Screen) Back() {
	s.mu.Lock()
	s.cancelLocked()
	s.snap = s.idleSnapshot()
	s.mu.Unlock()
	s.toast.Dismiss()
	s.publish()
}

// Close cancels everything, waits for the running download to stop and
// closes every subscription
func (s *Screen) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	handle := s.download
	s.cancelLocked()
	s.baseCancel()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.mu.Unlock()

	if handle != nil {
		<-handle.Done()
	}
}

// Snapshot returns a copy of the current state
func (s *Screen) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe delivers the latest snapshot after every change. Slow readers
// only ever see the newest state. The returned func unsubscribes.
func (s *Screen) Subscribe() (<-chan domain.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan domain.Snapshot, subscriberBacklog)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// Wait blocks until the current download finishes and returns the final state
func (s *Screen) Wait(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	handle := s.download
	s.mu.Unlock()

	if handle != nil {
		select {
		case <-handle.Done():
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
	return s.Snapshot(), nil
}

func (s *Screen) checkUsable() error {
	if !s.spec.Active {
		return domain.ErrPlatformUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrScreenClosed
	}
	return nil
}

// freshLocked starts a new session for raw, keeping nothing from the last one
func (s *Screen) freshLocked(raw string) domain.Snapshot {
	snap := s.idleSnapshot()
	snap.URL = raw
	return snap
}

// dropPreviewLocked forgets the current preview and makes a pending one stale
func (s *Screen) dropPreviewLocked() {
	s.snap.Preview = nil
	switch s.snap.State {
	case domain.StatePreviewing:
		s.previewGen++
		if s.previewCancel != nil {
			s.previewCancel()
			s.previewCancel = nil
		}
		s.snap.State = domain.StateIdle
	case domain.StatePreviewed:
		s.snap.State = domain.StateIdle
	}
}

// cancelLocked aborts the running preview and download. Bumping both
// generations makes their late results stale.
func (s *Screen) cancelLocked() {
	s.previewGen++
	s.downloadGen++
	if s.previewCancel != nil {
		s.previewCancel()
		s.previewCancel = nil
	}
	if s.download != nil {
		s.download.Cancel()
		s.download = nil
	}
}

func (s *Screen) setError(message string) {
	s.mu.Lock()
	s.snap.Error = message
	s.snap.Success = ""
	s.mu.Unlock()
	s.publish()
}

func (s *Screen) snapshotLocked() domain.Snapshot {
	snap := s.snap
	if snap.Preview != nil {
		preview := *snap.Preview
		snap.Preview = &preview
	}
	snap.Toast = s.toast.Current()
	return snap
}

// publish pushes the latest snapshot to every subscriber without blocking
func (s *Screen) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// record stores the finished run and announces it
func (s *Screen) record(req domain.DownloadRequest, title string, result DownloadResult) {
	var status domain.HistoryStatus
	switch result.Outcome {
	case OutcomeSaved:
		status = domain.HistorySucceeded
		if s.notifier != nil {
			s.notifier.NotifyDownloadCompleted(s.spec.Platform, req.URL, result.FilePath)
		}
	case OutcomeFallback:
		status = domain.HistoryFallback
		if s.notifier != nil {
			s.notifier.NotifyFallback(s.spec.Platform, req.URL, result.FallbackURL)
		}
	case OutcomeFailed:
		status = domain.HistoryFailed
		if s.notifier != nil {
			s.notifier.NotifyDownloadFailed(s.spec.Platform, req.URL, result.Err)
		}
	default:
		return
	}

	if s.history == nil {
		return
	}
	entry := domain.NewHistoryEntry(s.spec.Platform, req.URL, title, status)
	entry.FilePath = result.FilePath
	entry.FallbackURL = result.FallbackURL
	entry.Attempts = result.Attempts
	if result.Err != nil {
		entry.ErrorMessage = domain.UserMessage(result.Err)
	}
	if err := s.history.Create(entry); err != nil {
		s.logger.Error("Failed to record history", zap.Error(err))
	}
}

// screenObserver applies run updates to the screen while its run is current
type screenObserver struct {
	screen *Screen
	gen    uint64
	req    domain.DownloadRequest
	title  string
}

func (o *screenObserver) update(fn func(snap *domain.Snapshot)) bool {
	s := o.screen
	s.mu.Lock()
	if o.gen != s.downloadGen || s.closed {
		s.mu.Unlock()
		return false
	}
	fn(&s.snap)
	s.mu.Unlock()
	s.publish()
	return true
}

func (o *screenObserver) DownloadStarted(attempt int) {
	o.update(func(snap *domain.Snapshot) {
		snap.State = domain.StateDownloading
		snap.Progress = 0
		snap.Attempt = attempt
		snap.RetryPending = false
		snap.Error = ""
	})
}

func (o *screenObserver) DownloadProgress(percent int) {
	o.update(func(snap *domain.Snapshot) {
		snap.Progress = percent
	})
}

func (o *screenObserver) DownloadRetrying(attempt int, delay time.Duration, err error) {
	o.update(func(snap *domain.Snapshot) {
		snap.State = domain.StateFailed
		snap.Attempt = attempt
		snap.RetryPending = true
		snap.Error = msgReconnecting
	})
}

func (o *screenObserver) DownloadFinished(result DownloadResult) {
	s := o.screen
	s.mu.Lock()
	if o.gen == s.downloadGen && !s.closed {
		snap := &s.snap
		snap.RetryPending = false
		snap.Attempt = result.Attempts
		switch result.Outcome {
		case OutcomeSaved:
			snap.State = domain.StateSucceeded
			snap.Progress = 100
			snap.FilePath = result.FilePath
			snap.Success = msgDownloaded
			snap.Error = ""
		case OutcomeFallback:
			snap.State = domain.StateSucceeded
			snap.FallbackURL = result.FallbackURL
			snap.Success = msgFallback
			snap.Error = ""
		case OutcomeFailed:
			snap.State = domain.StateFailed
			snap.Error = domain.UserMessage(result.Err)
			snap.Success = ""
		case OutcomeCancelled:
			snap.State = domain.StateIdle
			snap.Progress = 0
		}
		s.download = nil
	}
	s.mu.Unlock()
	s.publish()

	s.record(o.req, o.title, result)
}
