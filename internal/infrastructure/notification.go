package infrastructure

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// NotificationService sends desktop notifications about finished downloads
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var name string
	var args []string
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(message), strconv.Quote(title))
		name, args = "osascript", []string{"-e", script}
	case "notify-send":
		name, args = "notify-send", []string{title, message}
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err := n.run(name, args...); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("command", ShellEscapeCommand(name, args...)),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyDownloadCompleted announces a saved file
func (n *NotificationService) NotifyDownloadCompleted(platform domain.Platform, url, path string) {
	message := fmt.Sprintf("Saved %s (%s)", truncateString(path, 60), platform)
	n.Send("Download Completed", message)
}

// NotifyDownloadFailed announces a failed run
func (n *NotificationService) NotifyDownloadFailed(platform domain.Platform, url string, err error) {
	message := fmt.Sprintf("Failed: %s (%s)", truncateString(url, 30), platform)
	if err != nil {
		message = fmt.Sprintf("%s: %s", message, truncateString(domain.UserMessage(err), 60))
	}
	n.Send("Download Failed", message)
}

// NotifyFallback announces that the link was handed to the browser
func (n *NotificationService) NotifyFallback(platform domain.Platform, url, fallbackURL string) {
	message := fmt.Sprintf("Opened %s in the browser (%s)", truncateString(fallbackURL, 30), platform)
	n.Send("Manual Download Needed", message)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
