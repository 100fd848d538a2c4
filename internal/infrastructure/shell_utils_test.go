package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain url", input: "https://example.com/v/1", expected: "https://example.com/v/1"},
		{name: "empty string", input: "", expected: "''"},
		{name: "query string", input: "https://x.com/a?s=20&t=abc", expected: "'https://x.com/a?s=20&t=abc'"},
		{name: "spaces", input: "/tmp/my videos", expected: "'/tmp/my videos'"},
		{name: "single quote", input: "/tmp/it's", expected: `'/tmp/it'"'"'s'`},
		{name: "dollar", input: "$HOME", expected: "'$HOME'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscape(tt.input))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	assert.Equal(t, "xdg-open https://example.com", ShellEscapeCommand("xdg-open", "https://example.com"))
	assert.Equal(t,
		"rundll32 url.dll,FileProtocolHandler 'https://a.com/?x=1&y=2'",
		ShellEscapeCommand("rundll32", "url.dll,FileProtocolHandler", "https://a.com/?x=1&y=2"))
	assert.Equal(t, "'/opt/my apps/open'", ShellEscapeCommand("/opt/my apps/open"))
}
