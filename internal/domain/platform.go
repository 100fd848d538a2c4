package domain

import (
	"net/url"
	"strings"
)

// Platform identifies a social network screen
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformThreads   Platform = "threads"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
)

// PlatformSpec describes how a platform screen talks to the backend
type PlatformSpec struct {
	Platform    Platform `json:"platform"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Active      bool     `json:"active"`

	// BasePath is appended to the backend base URL, e.g. "/api/tiktok"
	BasePath string `json:"-"`
	// SendTitle adds the sanitized preview title to the stream request
	SendTitle bool `json:"-"`
	// ProbePreview requires a HEAD check of the preview media URL
	ProbePreview bool `json:"-"`
	// AllowFallback honors FALLBACK_ messages
	AllowFallback bool `json:"-"`
	// CopyInputURL makes "copy" use the typed link instead of the preview media URL
	CopyInputURL bool `json:"-"`
	// InvalidURLMessage is shown when validation fails
	InvalidURLMessage string `json:"-"`

	match      func(u *url.URL) bool
	stripQuery bool
}

var platformSpecs = []PlatformSpec{
	{
		Platform:          PlatformFacebook,
		Name:              "Facebook",
		Description:       "High quality videos, reels and stories.",
		Color:             "#1877f2",
		Active:            true,
		BasePath:          "/api",
		SendTitle:         true,
		ProbePreview:      true,
		InvalidURLMessage: "Please enter a valid Facebook video link",
		match:             hostContains("facebook.com", "fb.watch"),
	},
	{
		Platform:          PlatformInstagram,
		Name:              "Instagram",
		Description:       "Reels in their original quality.",
		Color:             "#E1306C",
		Active:            true,
		BasePath:          "/api/instagram",
		InvalidURLMessage: "Only Instagram Reel links are supported",
		match:             instagramReel,
		stripQuery:        true,
	},
	{
		Platform:          PlatformTikTok,
		Name:              "TikTok",
		Description:       "Watermark-free videos in full HD.",
		Color:             "#000000",
		Active:            true,
		BasePath:          "/api/tiktok",
		AllowFallback:     true,
		CopyInputURL:      true,
		InvalidURLMessage: "Please enter a valid TikTok video link",
		match:             hostContains("tiktok.com"),
	},
	{
		Platform:          PlatformThreads,
		Name:              "Threads",
		Description:       "Threads support is coming soon.",
		Color:             "#000000",
		BasePath:          "/api/threads",
		InvalidURLMessage: "Please enter a valid Threads link",
		match:             hostContains("threads.net", "threads.com"),
	},
	{
		Platform:          PlatformTwitter,
		Name:              "X (Twitter)",
		Description:       "X/Twitter videos are coming soon.",
		Color:             "#1da1f2",
		BasePath:          "/api/twitter",
		InvalidURLMessage: "Please enter a valid X/Twitter link",
		match:             hostMatches("x.com", "twitter.com"),
	},
	{
		Platform:          PlatformYouTube,
		Name:              "YouTube",
		Description:       "YouTube downloads are coming soon.",
		Color:             "#ff0000",
		BasePath:          "/api/youtube",
		InvalidURLMessage: "Please enter a valid YouTube link",
		match:             hostMatches("youtube.com", "youtu.be"),
	},
}

// Platforms returns every known platform in menu order
func Platforms() []PlatformSpec {
	out := make([]PlatformSpec, len(platformSpecs))
	copy(out, platformSpecs)
	return out
}

// LookupPlatform returns the PlatformSpec for a platform
func LookupPlatform(p Platform) (PlatformSpec, bool) {
	for _, spec := range platformSpecs {
		if spec.Platform == p {
			return spec, true
		}
	}
	return PlatformSpec{}, false
}

// ParsePlatform resolves a platform name, accepting "x" as an alias of twitter
func ParsePlatform(name string) (PlatformSpec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "x" {
		name = string(PlatformTwitter)
	}
	spec, ok := LookupPlatform(Platform(name))
	if !ok {
		return PlatformSpec{}, &UnknownPlatformError{Name: name}
	}
	return spec, nil
}

// DetectPlatform returns the first active platform accepting the URL
func DetectPlatform(raw string) (Platform, bool) {
	for _, spec := range platformSpecs {
		if spec.Active && spec.IsValidURL(raw) {
			return spec.Platform, true
		}
	}
	return "", false
}

func hostContains(fragments ...string) func(u *url.URL) bool {
	return func(u *url.URL) bool {
		host := strings.ToLower(u.Hostname())
		for _, f := range fragments {
			if strings.Contains(host, f) {
				return true
			}
		}
		return false
	}
}

// hostMatches accepts the exact domain or any subdomain of it
func hostMatches(domains ...string) func(u *url.URL) bool {
	return func(u *url.URL) bool {
		host := strings.ToLower(u.Hostname())
		for _, d := range domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return true
			}
		}
		return false
	}
}

func instagramReel(u *url.URL) bool {
	return strings.ToLower(u.Hostname()) == "www.instagram.com" && strings.HasPrefix(u.Path, "/reel/")
}
