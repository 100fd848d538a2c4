package domain

// SessionState is the UI state of one platform screen
type SessionState string

const (
	StateIdle        SessionState = "idle"
	StatePreviewing  SessionState = "previewing"
	StatePreviewed   SessionState = "previewed"
	StateDownloading SessionState = "downloading"
	StateSucceeded   SessionState = "succeeded"
	StateFailed      SessionState = "failed"
)

// IsTerminal reports whether the download run has ended
func (s SessionState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Busy reports whether a network operation is in flight
func (s SessionState) Busy() bool {
	return s == StatePreviewing || s == StateDownloading
}

// Snapshot is an immutable copy of a screen's state
type Snapshot struct {
	SessionID    string         `json:"session_id"`
	Platform     Platform       `json:"platform"`
	State        SessionState   `json:"state"`
	URL          string         `json:"url"`
	Progress     int            `json:"progress"`
	Error        string         `json:"error,omitempty"`
	Success      string         `json:"success,omitempty"`
	Preview      *PreviewResult `json:"preview,omitempty"`
	Attempt      int            `json:"attempt"`
	RetryPending bool           `json:"retry_pending"`
	FilePath     string         `json:"file_path,omitempty"`
	FallbackURL  string         `json:"fallback_url,omitempty"`
	Toast        *Toast         `json:"toast,omitempty"`
}

// ToastLevel selects the styling of a toast
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
)

// Toast is a transient status message
type Toast struct {
	Level   ToastLevel `json:"level"`
	Message string     `json:"message"`
}
