// Package tui is the terminal front end: a platform menu and one screen
// per platform, rendered with Bubble Tea.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is the base colors of one theme
type Palette struct {
	Background string
	Surface    string
	Text       string
	Muted      string
	Accent     string
	Border     string
}

// DarkPalette is used when dark mode is on
func DarkPalette() Palette {
	return Palette{
		Background: "#0a0a0b",
		Surface:    "#1a1a1b",
		Text:       "#ffffff",
		Muted:      "#909090",
		Accent:     "#4ade80",
		Border:     "#333333",
	}
}

// LightPalette is used when dark mode is off
func LightPalette() Palette {
	return Palette{
		Background: "#ffffff",
		Surface:    "#f3f4f6",
		Text:       "#111827",
		Muted:      "#6b7280",
		Accent:     "#2563eb",
		Border:     "#d1d5db",
	}
}

// Theme holds the lipgloss styles of the UI
type Theme struct {
	Dark    bool
	Palette Palette

	Error   lipgloss.Color
	Success lipgloss.Color

	Title        lipgloss.Style
	Subtle       lipgloss.Style
	Normal       lipgloss.Style
	ErrorStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	Selected     lipgloss.Style
	Disabled     lipgloss.Style
	Badge        lipgloss.Style
	Toast        lipgloss.Style
	Box          lipgloss.Style
}

// NewTheme builds the dark or light theme
func NewTheme(dark bool) *Theme {
	p := LightPalette()
	if dark {
		p = DarkPalette()
	}
	t := &Theme{
		Dark:    dark,
		Palette: p,
		Error:   lipgloss.Color("#ef4444"),
		Success: lipgloss.Color("#22c55e"),
	}
	t.buildStyles()
	return t
}

func (t *Theme) buildStyles() {
	text := lipgloss.Color(t.Palette.Text)
	muted := lipgloss.Color(t.Palette.Muted)
	accent := lipgloss.Color(t.Palette.Accent)

	t.Title = lipgloss.NewStyle().Foreground(text).Bold(true)
	t.Subtle = lipgloss.NewStyle().Foreground(muted)
	t.Normal = lipgloss.NewStyle().Foreground(text)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	t.SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)

	t.Selected = lipgloss.NewStyle().
		Foreground(accent).
		Background(lipgloss.Color(t.Palette.Surface)).
		PaddingLeft(1).
		Bold(true)

	t.Disabled = lipgloss.NewStyle().
		Foreground(muted).
		Italic(true)

	t.Badge = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Palette.Background)).
		Background(muted).
		Padding(0, 1)

	t.Toast = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Palette.Background)).
		Background(accent).
		Padding(0, 1)

	t.Box = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Palette.Border)).
		Padding(0, 1)
}

// PlatformStyle colors a platform name with its brand color
func (t *Theme) PlatformStyle(color string) lipgloss.Style {
	if color == "#000000" && t.Dark {
		color = t.Palette.Text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
