package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

var errStreamClosed = errors.New("stream closed")

type streamStep struct {
	event domain.Event
	err   error
}

func step(e domain.Event) streamStep { return streamStep{event: e} }

func dropped() streamStep { return streamStep{err: io.ErrUnexpectedEOF} }

// fakeStream replays steps and then blocks until closed
type fakeStream struct {
	steps     chan streamStep
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeStream(steps ...streamStep) *fakeStream {
	s := &fakeStream{
		steps:  make(chan streamStep, len(steps)),
		closed: make(chan struct{}),
	}
	for _, st := range steps {
		s.steps <- st
	}
	return s
}

func (s *fakeStream) Next() (domain.Event, error) {
	select {
	case <-s.closed:
		return domain.Event{}, errStreamClosed
	default:
	}
	select {
	case st := <-s.steps:
		return st.event, st.err
	case <-s.closed:
		return domain.Event{}, errStreamClosed
	}
}

func (s *fakeStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeBackend struct {
	mu       sync.Mutex
	preview  func(ctx context.Context, spec domain.PlatformSpec, url string) (*domain.PreviewResult, error)
	previews []string
	streams  []*fakeStream
	requests []domain.DownloadRequest
}

func (b *fakeBackend) Preview(ctx context.Context, spec domain.PlatformSpec, url string) (*domain.PreviewResult, error) {
	b.mu.Lock()
	b.previews = append(b.previews, url)
	fn := b.preview
	b.mu.Unlock()
	if fn == nil {
		return &domain.PreviewResult{MediaURL: "https://cdn.example.com/v.mp4", Title: "Sample Clip"}, nil
	}
	return fn(ctx, spec, url)
}

func (b *fakeBackend) OpenStream(ctx context.Context, spec domain.PlatformSpec, req domain.DownloadRequest) (domain.EventStream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if len(b.streams) == 0 {
		return nil, errors.New("connection refused")
	}
	s := b.streams[0]
	b.streams = b.streams[1:]
	return s, nil
}

func (b *fakeBackend) ArtifactURL(spec domain.PlatformSpec, token string) string {
	return "http://backend" + spec.BasePath + "/download?filename=" + token
}

func (b *fakeBackend) addStreams(streams ...*fakeStream) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streams = append(b.streams, streams...)
}

func (b *fakeBackend) opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *fakeBackend) previewCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.previews)
}

type savedArtifact struct {
	url      string
	name     string
	fallback string
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []savedArtifact
	err   error
}

func (s *fakeSaver) Save(ctx context.Context, artifactURL, name, fallback string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, savedArtifact{url: artifactURL, name: name, fallback: fallback})
	if name == "" {
		name = fallback
	}
	return "/downloads/" + name, nil
}

func (s *fakeSaver) calls() []savedArtifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]savedArtifact(nil), s.saved...)
}

type fakeOpener struct {
	mu     sync.Mutex
	opened []string
}

func (o *fakeOpener) Open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, url)
	return nil
}

func (o *fakeOpener) links() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

type fakeClipboard struct {
	mu       sync.Mutex
	text     string
	readErr  error
	writeErr error
}

func (c *fakeClipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.readErr
}

func (c *fakeClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.text = text
	return nil
}

func (c *fakeClipboard) content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

type fakeDevice struct{ mobile bool }

func (d fakeDevice) IsMobile(string) bool { return d.mobile }

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) add(kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, kind)
}

func (n *fakeNotifier) NotifyDownloadCompleted(domain.Platform, string, string) { n.add("completed") }
func (n *fakeNotifier) NotifyDownloadFailed(domain.Platform, string, error)     { n.add("failed") }
func (n *fakeNotifier) NotifyFallback(domain.Platform, string, string)          { n.add("fallback") }

func (n *fakeNotifier) list() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type memoryHistory struct {
	mu      sync.Mutex
	entries []*domain.HistoryEntry
}

func (h *memoryHistory) Create(entry *domain.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

func (h *memoryHistory) Delete(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.entries {
		if e.ID == id {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (h *memoryHistory) FindByID(id string) (*domain.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (h *memoryHistory) FindAll(filter domain.HistoryFilter) ([]*domain.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*domain.HistoryEntry
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		if filter.Platform != "" && e.Platform != filter.Platform {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (h *memoryHistory) GetStats() (*domain.HistoryStats, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stats := &domain.HistoryStats{Total: int64(len(h.entries))}
	for _, e := range h.entries {
		switch e.Status {
		case domain.HistorySucceeded:
			stats.Succeeded++
		case domain.HistoryFailed:
			stats.Failed++
		case domain.HistoryFallback:
			stats.Fallback++
		}
	}
	return stats, nil
}

func (h *memoryHistory) all() []*domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*domain.HistoryEntry(nil), h.entries...)
}

type memoryPrefs struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{values: make(map[string]string)}
}

func (p *memoryPrefs) Get(key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *memoryPrefs) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.setErr != nil {
		return p.setErr
	}
	p.values[key] = value
	return nil
}

func testDownloadConfig() *domain.DownloadConfig {
	return &domain.DownloadConfig{
		Dir:             "/downloads",
		RetryDelay:      time.Millisecond,
		RetryMultiplier: 2,
		MaxRetryDelay:   5 * time.Millisecond,
		MaxReconnects:   3,
		OpenFallback:    true,
	}
}

// screenFixture bundles a screen with its fakes
type screenFixture struct {
	screen    *Screen
	backend   *fakeBackend
	saver     *fakeSaver
	opener    *fakeOpener
	clipboard *fakeClipboard
	history   *memoryHistory
	notifier  *fakeNotifier
}

func newScreenFixture(p domain.Platform, config *domain.DownloadConfig, device fakeDevice) *screenFixture {
	spec, _ := domain.LookupPlatform(p)
	f := &screenFixture{
		backend:   &fakeBackend{},
		saver:     &fakeSaver{},
		opener:    &fakeOpener{},
		clipboard: &fakeClipboard{},
		history:   &memoryHistory{},
		notifier:  &fakeNotifier{},
	}
	logger := zap.NewNop()
	f.screen = NewScreen(spec, ScreenDeps{
		Previewer:    NewPreviewer(f.backend, logger),
		Downloads:    NewDownloadManager(f.backend, f.saver, f.opener, config, logger),
		Clipboard:    f.clipboard,
		Device:       device,
		History:      f.history,
		Notifier:     f.notifier,
		CopyToastTTL: 30 * time.Millisecond,
		Logger:       logger,
	})
	return f
}
