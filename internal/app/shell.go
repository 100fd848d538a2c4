package app

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// DarkModeKey is the preference key of the theme flag
const DarkModeKey = "theme:darkMode"

// ShellOptions configure the application shell
type ShellOptions struct {
	ToastTTL        time.Duration
	HistoryLimit    int
	DefaultDarkMode bool
}

// Shell is the navigation layer: the platform menu, one screen per
// platform, the theme preference and the download history
type Shell struct {
	screens map[domain.Platform]*Screen
	prefs   domain.PreferenceStore
	history domain.HistoryRepository
	toast   *ToastPresenter
	opts    ShellOptions
	logger  *zap.Logger

	mu       sync.RWMutex
	darkMode bool
}

// NewShell builds the shell and restores the stored theme. A missing or
// unreadable preference falls back to opts.DefaultDarkMode.
func NewShell(screens []*Screen, prefs domain.PreferenceStore, history domain.HistoryRepository, opts ShellOptions, logger *zap.Logger) *Shell {
	sh := &Shell{
		screens:  make(map[domain.Platform]*Screen, len(screens)),
		prefs:    prefs,
		history:  history,
		opts:     opts,
		logger:   logger,
		darkMode: opts.DefaultDarkMode,
	}
	for _, screen := range screens {
		sh.screens[screen.Spec().Platform] = screen
	}
	sh.toast = NewToastPresenter(nil)

	if prefs != nil {
		value, ok, err := prefs.Get(DarkModeKey)
		switch {
		case err != nil:
			logger.Warn("Failed to read theme preference", zap.Error(err))
		case ok:
			if dark, err := strconv.ParseBool(value); err == nil {
				sh.darkMode = dark
			} else {
				logger.Debug("Ignoring malformed theme preference", zap.String("value", value))
			}
		}
	}
	return sh
}

// Platforms returns the menu entries in order
func (sh *Shell) Platforms() []domain.PlatformSpec {
	return domain.Platforms()
}

// Screen navigates to a platform. Inactive platforms show a "coming soon"
// toast and return ErrPlatformUnavailable.
func (sh *Shell) Screen(p domain.Platform) (*Screen, error) {
	spec, ok := domain.LookupPlatform(p)
	if !ok {
		return nil, &domain.UnknownPlatformError{Name: string(p)}
	}
	if !spec.Active {
		sh.toast.Show(domain.ToastInfo, comingSoon(spec), sh.opts.ToastTTL)
		return nil, domain.ErrPlatformUnavailable
	}
	screen, ok := sh.screens[p]
	if !ok {
		return nil, &domain.UnknownPlatformError{Name: string(p)}
	}
	return screen, nil
}

// ScreenByName resolves a platform name or alias and navigates to it
func (sh *Shell) ScreenByName(name string) (*Screen, error) {
	spec, err := domain.ParsePlatform(name)
	if err != nil {
		return nil, err
	}
	return sh.Screen(spec.Platform)
}

// ScreenForURL navigates to the first active platform accepting raw
func (sh *Shell) ScreenForURL(raw string) (*Screen, error) {
	p, ok := domain.DetectPlatform(raw)
	if !ok {
		return nil, &domain.ValidationError{Input: raw, Message: "Unsupported link"}
	}
	return sh.Screen(p)
}

// Toast returns the shell-level toast, if any
func (sh *Shell) Toast() *domain.Toast {
	return sh.toast.Current()
}

// DarkMode reports the current theme
func (sh *Shell) DarkMode() bool {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.darkMode
}

// ToggleDarkMode flips and persists the theme
func (sh *Shell) ToggleDarkMode() bool {
	sh.mu.Lock()
	sh.darkMode = !sh.darkMode
	dark := sh.darkMode
	sh.mu.Unlock()

	sh.persistTheme(dark)
	return dark
}

// SetDarkMode sets and persists the theme
func (sh *Shell) SetDarkMode(dark bool) {
	sh.mu.Lock()
	sh.darkMode = dark
	sh.mu.Unlock()

	sh.persistTheme(dark)
}

// persistTheme never fails the toggle; storage errors are only logged
func (sh *Shell) persistTheme(dark bool) {
	if sh.prefs == nil {
		return
	}
	if err := sh.prefs.Set(DarkModeKey, strconv.FormatBool(dark)); err != nil {
		sh.logger.Warn("Failed to store theme preference", zap.Error(err))
	}
}

// History lists finished runs newest first
func (sh *Shell) History(filter domain.HistoryFilter) ([]*domain.HistoryEntry, error) {
	if sh.history == nil {
		return nil, nil
	}
	if filter.Limit <= 0 {
		filter.Limit = sh.opts.HistoryLimit
	}
	return sh.history.FindAll(filter)
}

// DeleteHistory removes one entry
func (sh *Shell) DeleteHistory(id string) error {
	if sh.history == nil {
		return domain.ErrNotFound
	}
	return sh.history.Delete(id)
}

// HistoryStats counts finished runs by outcome
func (sh *Shell) HistoryStats() (*domain.HistoryStats, error) {
	if sh.history == nil {
		return &domain.HistoryStats{}, nil
	}
	return sh.history.GetStats()
}

// Close closes every screen
func (sh *Shell) Close() {
	var wg sync.WaitGroup
	for _, screen := range sh.screens {
		wg.Add(1)
		go func(s *Screen) {
			defer wg.Done()
			s.Close()
		}(screen)
	}
	wg.Wait()
	sh.toast.Dismiss()
}

func comingSoon(spec domain.PlatformSpec) string {
	return fmt.Sprintf("%q is under development. Please check back later!", spec.Name)
}
