package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryStatus is the recorded outcome of a download run
type HistoryStatus string

const (
	HistorySucceeded HistoryStatus = "succeeded"
	HistoryFailed    HistoryStatus = "failed"
	HistoryFallback  HistoryStatus = "fallback"
)

// HistoryEntry records one finished download run
type HistoryEntry struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	Platform     Platform      `json:"platform" gorm:"not null;index"`
	URL          string        `json:"url" gorm:"not null"`
	Title        string        `json:"title,omitempty"`
	Status       HistoryStatus `json:"status" gorm:"not null;index"`
	FilePath     string        `json:"file_path,omitempty"`
	FallbackURL  string        `json:"fallback_url,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Attempts     int           `json:"attempts" gorm:"default:0"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewHistoryEntry creates an entry for a finished run
func NewHistoryEntry(platform Platform, url, title string, status HistoryStatus) *HistoryEntry {
	now := time.Now()
	return &HistoryEntry{
		ID:        uuid.New().String(),
		Platform:  platform,
		URL:       url,
		Title:     title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DisplayTitle returns the title or a placeholder
func (h *HistoryEntry) DisplayTitle() string {
	if h.Title == "" {
		return "Untitled"
	}
	return h.Title
}

// HistoryFilter narrows a history listing. Zero values match everything.
type HistoryFilter struct {
	Platform Platform
	Status   HistoryStatus
	Limit    int
}

// HistoryStats counts recorded runs by outcome
type HistoryStats struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Fallback  int64 `json:"fallback"`
}

// Preference is one persisted key/value setting
type Preference struct {
	Key       string    `gorm:"primaryKey;column:name"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
