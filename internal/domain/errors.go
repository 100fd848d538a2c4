package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is matched by every ValidationError
	ErrInvalidURL = errors.New("invalid url")
	// ErrPlatformUnavailable is returned for "coming soon" platforms
	ErrPlatformUnavailable = errors.New("platform not available yet")
	// ErrUnknownPlatform is matched by every UnknownPlatformError
	ErrUnknownPlatform = errors.New("unknown platform")
	// ErrUnknownEvent is returned when a stream line has no known prefix
	ErrUnknownEvent = errors.New("unknown stream event")
	// ErrNothingToCopy is returned when a screen has no link to copy
	ErrNothingToCopy = errors.New("nothing to copy")
	// ErrClipboardUnavailable is returned when the clipboard cannot be read or written
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	// ErrNotFound is returned when a history entry does not exist
	ErrNotFound = errors.New("not found")
	// ErrSuperseded is returned by a preview replaced by a newer request
	ErrSuperseded = errors.New("request superseded")
	// ErrScreenClosed is returned by operations on a closed screen
	ErrScreenClosed = errors.New("screen closed")
)

// ValidationError reports an unsupported or malformed link
type ValidationError struct {
	Platform Platform
	Input    string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s url: %q", e.Platform, e.Input)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidURL }

// UnknownPlatformError reports a platform name with no spec
type UnknownPlatformError struct {
	Name string
}

func (e *UnknownPlatformError) Error() string {
	return fmt.Sprintf("unknown platform: %q", e.Name)
}

func (e *UnknownPlatformError) Unwrap() error { return ErrUnknownPlatform }

// PreviewFailure classifies why a preview could not be produced
type PreviewFailure string

const (
	PreviewNetwork      PreviewFailure = "network"
	PreviewStatus       PreviewFailure = "status"
	PreviewDecode       PreviewFailure = "decode"
	PreviewMissingMedia PreviewFailure = "missing_media"
	PreviewProbe        PreviewFailure = "probe"
)

// PreviewError is returned by the preview requester
type PreviewError struct {
	Reason     PreviewFailure
	StatusCode int
	Message    string
	Err        error
}

func (e *PreviewError) Error() string {
	if e.Message != "" {
		return "preview failed: " + e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("preview failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("preview failed (%s)", e.Reason)
}

func (e *PreviewError) Unwrap() error { return e.Err }

// StreamTransportError reports a stream that dropped before a terminal message
type StreamTransportError struct {
	Attempts int
	Err      error
}

func (e *StreamTransportError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("lost connection to server after %d reconnect attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("lost connection to server: %v", e.Err)
}

func (e *StreamTransportError) Unwrap() error { return e.Err }

// BackendError carries the text of an ERROR_ message verbatim
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string { return e.Message }

// SaveError reports a failure to retrieve or store the finished artifact
type SaveError struct {
	Token string
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Token, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the user for err
func UserMessage(err error) string {
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	var previewErr *PreviewError
	if errors.As(err, &previewErr) {
		if previewErr.Message != "" {
			return "Error: " + previewErr.Message
		}
		return "Error: could not fetch the video"
	}
	if errors.Is(err, ErrPlatformUnavailable) {
		return "This platform is under development. Please check back later!"
	}
	return err.Error()
}
