package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DownloadRequest is the input of one download run
type DownloadRequest struct {
	URL            string
	Platform       Platform
	SanitizedTitle string
}

// NewDownloadRequest builds a request from a screen's URL and preview title
func NewDownloadRequest(spec PlatformSpec, rawURL, title string) DownloadRequest {
	return DownloadRequest{
		URL:            spec.CleanURL(rawURL),
		Platform:       spec.Platform,
		SanitizedTitle: SanitizeTitle(title),
	}
}

// PreviewResult is what the backend reports about a link before download
type PreviewResult struct {
	MediaURL     string     `json:"media_url"`
	Title        string     `json:"title,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	EmbedHTML    string     `json:"embed_html,omitempty"`
	Embed        *EmbedInfo `json:"embed,omitempty"`
}

// EmbedInfo is extracted from oEmbed markup
type EmbedInfo struct {
	CiteURL      string `json:"cite_url,omitempty"`
	VideoID      string `json:"video_id,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// CopyTarget returns the link a "copy" action puts on the clipboard
func (p *PreviewResult) CopyTarget() string {
	if p == nil {
		return ""
	}
	return p.MediaURL
}

var (
	unsafeTitleChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// SanitizeTitle strips characters that are invalid in file names and
// collapses whitespace runs into underscores
func SanitizeTitle(title string) string {
	s := unsafeTitleChars.ReplaceAllString(title, "")
	s = strings.TrimSpace(s)
	return whitespaceRun.ReplaceAllString(s, "_")
}

// SaveName picks the local file name for a finished artifact
func SaveName(sanitizedTitle, token string) string {
	if sanitizedTitle == "" {
		return filepath.Base(token)
	}
	ext := filepath.Ext(token)
	if ext == "" {
		ext = ".mp4"
	}
	return sanitizedTitle + ext
}
