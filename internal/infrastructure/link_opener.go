package infrastructure

import (
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"
)

// BrowserOpener opens links with the desktop's default handler
type BrowserOpener struct {
	logger *zap.Logger
	goos   string
	start  func(name string, args ...string) error
}

// NewBrowserOpener creates an opener for the running OS
func NewBrowserOpener(logger *zap.Logger) *BrowserOpener {
	return &BrowserOpener{
		logger: logger,
		goos:   runtime.GOOS,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Open hands url to the system browser without waiting for it
func (o *BrowserOpener) Open(url string) error {
	name, args := openCommand(o.goos, url)
	o.logger.Info("Opening link",
		zap.String("command", ShellEscapeCommand(name, args...)))

	if err := o.start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
