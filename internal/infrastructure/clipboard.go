package infrastructure

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/vidgrab/vidgrab/internal/domain"
)

const maxClipboardText = 2048

// SystemClipboard reads and writes the desktop clipboard
type SystemClipboard struct{}

// NewSystemClipboard returns the desktop clipboard adapter
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// ReadText returns trimmed clipboard text. Multi-line or oversized content is
// rejected since it cannot be a single link.
func (c *SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", domain.ErrClipboardUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrClipboardUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if len(text) > maxClipboardText || strings.ContainsAny(text, "\n\r") {
		return "", fmt.Errorf("%w: clipboard does not hold a single link", domain.ErrClipboardUnavailable)
	}
	return text, nil
}

// WriteText replaces the clipboard content
func (c *SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return domain.ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrClipboardUnavailable, err)
	}
	return nil
}
