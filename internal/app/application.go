package app

import (
	"fmt"

	"github.com/vidgrab/vidgrab/internal/domain"
	"github.com/vidgrab/vidgrab/internal/infrastructure"
	"go.uber.org/zap"
)

// Application wires the client together
type Application struct {
	Config    *domain.Config
	Logger    *zap.Logger
	Repo      *infrastructure.SQLiteRepository
	Backend   domain.Backend
	Downloads *DownloadManager
	Device    domain.DeviceClassifier
	Shell     *Shell
}

// Option replaces a default collaborator, mostly for tests
type Option func(*components)

type components struct {
	backend   domain.Backend
	saver     domain.ArtifactSaver
	opener    domain.LinkOpener
	clipboard domain.ClipboardPort
	notifier  domain.Notifier
	darkMode  bool
}

// WithBackend replaces the HTTP backend client
func WithBackend(b domain.Backend) Option { return func(c *components) { c.backend = b } }

// WithSaver replaces the file saver
func WithSaver(s domain.ArtifactSaver) Option { return func(c *components) { c.saver = s } }

// WithLinkOpener replaces the system browser opener
func WithLinkOpener(o domain.LinkOpener) Option { return func(c *components) { c.opener = o } }

// WithClipboard replaces the system clipboard
func WithClipboard(cb domain.ClipboardPort) Option { return func(c *components) { c.clipboard = cb } }

// WithNotifier replaces the desktop notifier
func WithNotifier(n domain.Notifier) Option { return func(c *components) { c.notifier = n } }

// WithDefaultDarkMode sets the theme used when none is stored
func WithDefaultDarkMode(dark bool) Option { return func(c *components) { c.darkMode = dark } }

// NewApplication opens storage and builds every screen
func NewApplication(config *domain.Config, logger *zap.Logger, opts ...Option) (*Application, error) {
	repo, err := infrastructure.NewSQLiteRepository(config.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	c := &components{}
	for _, opt := range opts {
		opt(c)
	}
	if c.backend == nil {
		c.backend = infrastructure.NewBackendClient(&config.Backend, logger)
	}
	if c.saver == nil {
		c.saver = infrastructure.NewFileSaver(config.Download.Dir, logger)
	}
	if c.opener == nil {
		c.opener = infrastructure.NewBrowserOpener(logger)
	}
	if c.clipboard == nil {
		c.clipboard = infrastructure.NewSystemClipboard()
	}
	if c.notifier == nil {
		c.notifier = infrastructure.NewNotificationService(&config.Notification, logger)
	}

	device := infrastructure.UserAgentClassifier{}
	previewer := NewPreviewer(c.backend, logger)
	downloads := NewDownloadManager(c.backend, c.saver, c.opener, &config.Download, logger)

	var screens []*Screen
	for _, spec := range domain.Platforms() {
		if !spec.Active {
			continue
		}
		screens = append(screens, NewScreen(spec, ScreenDeps{
			Previewer:    previewer,
			Downloads:    downloads,
			Clipboard:    c.clipboard,
			Device:       device,
			History:      repo,
			Notifier:     c.notifier,
			CopyToastTTL: config.UI.CopyToastDuration,
			Logger:       logger,
		}))
	}

	shell := NewShell(screens, repo, repo, ShellOptions{
		ToastTTL:        config.UI.ToastDuration,
		HistoryLimit:    config.UI.HistoryLimit,
		DefaultDarkMode: c.darkMode,
	}, logger)

	return &Application{
		Config:    config,
		Logger:    logger,
		Repo:      repo,
		Backend:   c.backend,
		Downloads: downloads,
		Device:    device,
		Shell:     shell,
	}, nil
}

// Ready reports whether storage is reachable
func (a *Application) Ready() error {
	return a.Repo.Ping()
}

// Close stops every screen and closes storage
func (a *Application) Close() error {
	a.Shell.Close()
	return a.Repo.Close()
}
