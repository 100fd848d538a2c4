package domain

import "context"

// Backend is the external extraction service
type Backend interface {
	// Preview requests preview metadata for a cleaned URL
	Preview(ctx context.Context, spec PlatformSpec, url string) (*PreviewResult, error)

	// OpenStream opens the progress channel for a download
	OpenStream(ctx context.Context, spec PlatformSpec, req DownloadRequest) (EventStream, error)

	// ArtifactURL returns the retrieval URL for a finished file token
	ArtifactURL(spec PlatformSpec, token string) string
}

// EventStream yields decoded download events in delivery order
type EventStream interface {
	// Next blocks until the next event. Any error means the transport
	// dropped before a terminal event was read.
	Next() (Event, error)

	// Close releases the connection; it is safe to call more than once
	Close() error
}

// ArtifactSaver stores a finished artifact; it is the analogue of a browser save.
// A non-empty name is used as is. Otherwise a filename suggested by the
// server wins over fallback.
type ArtifactSaver interface {
	Save(ctx context.Context, artifactURL, name, fallback string) (string, error)
}

// LinkOpener opens a URL in an external browsing context
type LinkOpener interface {
	Open(url string) error
}

// ClipboardPort reads and writes the system clipboard
type ClipboardPort interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// DeviceClassifier decides whether a client is a mobile device
type DeviceClassifier interface {
	IsMobile(userAgent string) bool
}

// Notifier announces download outcomes outside the UI
type Notifier interface {
	NotifyDownloadCompleted(platform Platform, url, path string)
	NotifyDownloadFailed(platform Platform, url string, err error)
	NotifyFallback(platform Platform, url, fallbackURL string)
}
