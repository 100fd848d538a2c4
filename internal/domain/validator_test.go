package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		input    string
		expected bool
	}{
		{"facebook watch", PlatformFacebook, "https://www.facebook.com/watch/?v=123", true},
		{"facebook short link", PlatformFacebook, "https://fb.watch/abcDEF/", true},
		{"facebook mobile padded", PlatformFacebook, "  https://m.facebook.com/reel/1  ", true},
		{"facebook percent-encoded", PlatformFacebook, "https%3A%2F%2Fwww.facebook.com%2Fwatch%2F%3Fv%3D1", true},
		{"facebook uppercase host", PlatformFacebook, "https://WWW.FACEBOOK.COM/watch/?v=1", true},
		{"facebook host in path only", PlatformFacebook, "https://example.com/facebook.com", false},
		{"facebook missing scheme", PlatformFacebook, "facebook.com/video", false},
		{"bad percent encoding", PlatformFacebook, "https://www.facebook.com/%zz", false},
		{"invalid utf-8 escape", PlatformFacebook, "https://www.facebook.com/watch?v=%FF", false},
		{"empty", PlatformFacebook, "   ", false},
		{"instagram reel", PlatformInstagram, "https://www.instagram.com/reel/C123/", true},
		{"instagram reel with query", PlatformInstagram, "https://www.instagram.com/reel/C123/?igsh=abc", true},
		{"instagram reel percent-encoded", PlatformInstagram, "https%3A%2F%2Fwww.instagram.com%2Freel%2FC1%2F%3Figsh%3Dx", true},
		{"instagram post", PlatformInstagram, "https://www.instagram.com/p/C123/", false},
		{"instagram bare host", PlatformInstagram, "https://instagram.com/reel/C123/", false},
		{"tiktok video", PlatformTikTok, "https://www.tiktok.com/@user/video/123?is_from_webapp=1", true},
		{"tiktok vm", PlatformTikTok, "https://vm.tiktok.com/ZM123/", true},
		{"tiktok vt", PlatformTikTok, "https://vt.tiktok.com/ZS123/", true},
		{"tiktok lookalike", PlatformTikTok, "https://tiktok.example.com/video/1", false},
		{"twitter x", PlatformTwitter, "https://x.com/user/status/1", true},
		{"twitter suffix lookalike", PlatformTwitter, "https://box.com/user/status/1", false},
		{"youtube short", PlatformYouTube, "https://youtu.be/abc", true},
		{"unknown platform", Platform("myspace"), "https://myspace.com/v/1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidURL(tt.input, tt.platform))
		})
	}
}

func TestPlatformSpec_CleanURL(t *testing.T) {
	instagram, _ := LookupPlatform(PlatformInstagram)
	tiktok, _ := LookupPlatform(PlatformTikTok)

	assert.Equal(t, "https://www.instagram.com/reel/C1/", instagram.CleanURL(" https://www.instagram.com/reel/C1/?igsh=x "))
	assert.Equal(t, "https://www.tiktok.com/@u/video/1?lang=en", tiktok.CleanURL("https://www.tiktok.com/@u/video/1?lang=en"))
}

func TestPlatformSpec_Validate(t *testing.T) {
	tiktok, _ := LookupPlatform(PlatformTikTok)

	assert.NoError(t, tiktok.Validate("https://vm.tiktok.com/ZM1/"))

	err := tiktok.Validate("https://example.com")
	assert.True(t, errors.Is(err, ErrInvalidURL))

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, PlatformTikTok, validationErr.Platform)
	assert.Equal(t, tiktok.InvalidURLMessage, err.Error())
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
		ok       bool
	}{
		{"https://www.facebook.com/watch/?v=1", PlatformFacebook, true},
		{"https://www.instagram.com/reel/C1/", PlatformInstagram, true},
		{"https://vm.tiktok.com/ZM1/", PlatformTikTok, true},
		{"https://x.com/user/status/1", "", false},
		{"https://example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			platform, ok := DetectPlatform(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, platform)
		})
	}
}

func TestParsePlatform(t *testing.T) {
	spec, err := ParsePlatform(" TikTok ")
	assert.NoError(t, err)
	assert.Equal(t, PlatformTikTok, spec.Platform)

	spec, err = ParsePlatform("x")
	assert.NoError(t, err)
	assert.Equal(t, PlatformTwitter, spec.Platform)
	assert.False(t, spec.Active)

	_, err = ParsePlatform("myspace")
	assert.True(t, errors.Is(err, ErrUnknownPlatform))
}

func TestPlatforms_MenuOrder(t *testing.T) {
	platforms := Platforms()
	assert.Len(t, platforms, 6)
	assert.Equal(t, PlatformFacebook, platforms[0].Platform)

	active := 0
	for _, p := range platforms {
		if p.Active {
			active++
		}
	}
	assert.Equal(t, 3, active)

	// the returned slice is a copy
	platforms[0].Active = false
	spec, _ := LookupPlatform(PlatformFacebook)
	assert.True(t, spec.Active)
}
