package domain

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// NormalizeURL trims and percent-decodes raw input and parses it as an
// absolute URL. Decoding failures and relative references are errors.
func NormalizeURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty url")
	}

	decoded, err := url.PathUnescape(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode url: %w", err)
	}
	if !utf8.ValidString(decoded) {
		return nil, fmt.Errorf("failed to decode url: invalid utf-8")
	}

	u, err := url.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url must be absolute: %s", decoded)
	}
	return u, nil
}

// CleanURL returns the form of the URL sent to the backend
func (s PlatformSpec) CleanURL(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if s.stripQuery {
		if i := strings.Index(cleaned, "?"); i >= 0 {
			cleaned = cleaned[:i]
		}
	}
	return cleaned
}

// IsValidURL reports whether raw is a recognized video link for the platform.
// It performs no I/O and is safe to call on every keystroke.
func (s PlatformSpec) IsValidURL(raw string) bool {
	if s.match == nil {
		return false
	}
	u, err := NormalizeURL(s.CleanURL(raw))
	if err != nil {
		return false
	}
	return s.match(u)
}

// Validate returns a ValidationError when raw is not accepted
func (s PlatformSpec) Validate(raw string) error {
	if s.IsValidURL(raw) {
		return nil
	}
	return &ValidationError{Platform: s.Platform, Input: raw, Message: s.InvalidURLMessage}
}

// IsValidURL checks raw against the named platform
func IsValidURL(raw string, p Platform) bool {
	spec, ok := LookupPlatform(p)
	if !ok {
		return false
	}
	return spec.IsValidURL(raw)
}
