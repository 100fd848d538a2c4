package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vidgrab/vidgrab/internal/app"
	"github.com/vidgrab/vidgrab/internal/domain"
)

const refreshInterval = 500 * time.Millisecond

type view int

const (
	viewMenu view = iota
	viewScreen
)

// snapshotMsg carries a screen update from one subscription
type snapshotMsg struct {
	snap    domain.Snapshot
	updates <-chan domain.Snapshot
}

// screenClosedMsg is sent when a subscription ends
type screenClosedMsg struct {
	updates <-chan domain.Snapshot
}

// actionDoneMsg reports the end of a screen action
type actionDoneMsg struct {
	err error
}

// refreshMsg redraws shell-level toasts until they expire
type refreshMsg struct{}

// Model is the root Bubble Tea model
type Model struct {
	ctx   context.Context
	shell *app.Shell

	theme    *Theme
	keys     KeyMap
	help     help.Model
	input    textinput.Model
	spinner  spinner.Model
	progress progress.Model

	view        view
	cursor      int
	platforms   []domain.PlatformSpec
	screen      *app.Screen
	snap        domain.Snapshot
	updates     <-chan domain.Snapshot
	unsubscribe func()
	width       int
}

// New creates the root model
func New(ctx context.Context, shell *app.Shell) Model {
	m := Model{
		ctx:       ctx,
		shell:     shell,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		platforms: shell.Platforms(),
		width:     80,
	}

	m.input = textinput.New()
	m.input.Placeholder = "Paste a video link"
	m.input.CharLimit = 2048
	m.input.Width = 60

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.applyTheme(shell.DarkMode())
	return m
}

// Run starts the program and blocks until the user quits
func Run(ctx context.Context, shell *app.Shell) error {
	_, err := tea.NewProgram(New(ctx, shell), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) applyTheme(dark bool) {
	m.theme = NewTheme(dark)
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Palette.Accent))
	m.progress = progress.New(
		progress.WithSolidFill(m.theme.Palette.Accent),
		progress.WithWidth(40),
	)
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Palette.Accent))
	m.help.Styles.ShortDesc = m.theme.Subtle
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.leaveScreen()
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Theme) {
			m.applyTheme(m.shell.ToggleDarkMode())
			return m, nil
		}
		if m.view == viewMenu {
			return m.updateMenu(msg)
		}
		return m.updateScreen(msg)

	case snapshotMsg:
		if msg.updates != m.updates {
			return m, nil
		}
		m.snap = msg.snap
		if m.input.Value() == "" && m.snap.URL != "" {
			m.input.SetValue(m.snap.URL)
		}
		return m, waitForSnapshot(m.updates)

	case screenClosedMsg:
		if msg.updates == m.updates {
			m.updates = nil
		}
		return m, nil

	case actionDoneMsg:
		// failures are already part of the next snapshot
		return m, nil

	case refreshMsg:
		if m.shell.Toast() != nil {
			return m, refresh()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.view == viewScreen {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.platforms)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		return m.enterScreen(m.platforms[m.cursor].Platform)
	}
	return m, nil
}

func (m Model) enterScreen(p domain.Platform) (tea.Model, tea.Cmd) {
	screen, err := m.shell.Screen(p)
	if err != nil {
		// coming soon: the shell shows a toast
		return m, refresh()
	}

	m.screen = screen
	m.updates, m.unsubscribe = screen.Subscribe()
	m.view = viewScreen
	m.input.SetValue("")
	m.input.Focus()
	return m, waitForSnapshot(m.updates)
}

func (m *Model) leaveScreen() {
	if m.screen == nil {
		return
	}
	m.screen.Back()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.screen = nil
	m.updates = nil
	m.unsubscribe = nil
	m.snap = domain.Snapshot{}
	m.input.Blur()
	m.view = viewMenu
}

func (m Model) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen := m.screen
	switch {
	case key.Matches(msg, m.keys.Back):
		m.leaveScreen()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		raw := m.input.Value()
		return m, m.action(func() error { return screen.Preview(m.ctx, raw) })

	case key.Matches(msg, m.keys.Paste):
		m.input.SetValue("")
		return m, m.action(func() error { return screen.PasteAndPreview(m.ctx) })

	case key.Matches(msg, m.keys.Download):
		screen.SetURL(m.input.Value())
		return m, m.action(screen.Download)

	case key.Matches(msg, m.keys.Copy):
		return m, m.action(screen.CopyLink)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// action runs fn off the UI goroutine
func (m Model) action(fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: fn()}
	}
}

func waitForSnapshot(updates <-chan domain.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return screenClosedMsg{updates: updates}
		}
		return snapshotMsg{snap: snap, updates: updates}
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder
	if m.view == viewMenu {
		m.renderMenu(&b)
	} else {
		m.renderScreen(&b)
	}
	return b.String()
}

func (m Model) renderMenu(b *strings.Builder) {
	b.WriteString(m.theme.Title.Render("vidgrab"))
	b.WriteString(m.theme.Subtle.Render("  choose a platform"))
	b.WriteString("\n\n")

	for i, spec := range m.platforms {
		name := m.theme.PlatformStyle(spec.Color).Render(spec.Name)
		line := fmt.Sprintf("%s  %s", name, m.theme.Subtle.Render(spec.Description))
		if !spec.Active {
			line = fmt.Sprintf("%s  %s", m.theme.Disabled.Render(spec.Name), m.theme.Badge.Render("coming soon"))
		}
		if i == m.cursor {
			b.WriteString(m.theme.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if toast := m.shell.Toast(); toast != nil {
		b.WriteString("\n" + m.theme.Toast.Render(toast.Message) + "\n")
	}
	b.WriteString("\n" + m.help.View(menuKeys{m.keys}))
}

func (m Model) renderScreen(b *strings.Builder) {
	spec := m.screen.Spec()
	snap := m.snap

	b.WriteString(m.theme.PlatformStyle(spec.Color).Render(spec.Name + " downloader"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Box.Render(m.input.View()))
	b.WriteString("\n")

	if raw := strings.TrimSpace(m.input.Value()); raw != "" && !m.screen.Validate(raw) {
		b.WriteString(m.theme.Subtle.Render(spec.InvalidURLMessage) + "\n")
	}

	switch snap.State {
	case domain.StatePreviewing:
		b.WriteString(m.spinner.View() + " Loading preview...\n")
	case domain.StateDownloading:
		b.WriteString(m.spinner.View() + fmt.Sprintf(" Downloading (attempt %d)\n", snap.Attempt+1))
		b.WriteString(m.progress.ViewAs(float64(snap.Progress)/100) + "\n")
	}

	if p := snap.Preview; p != nil {
		title := p.Title
		if title == "" {
			title = "Untitled video"
		}
		preview := m.theme.Normal.Render(title) + "\n" + m.theme.Subtle.Render(p.MediaURL)
		if p.ThumbnailURL != "" {
			preview += "\n" + m.theme.Subtle.Render("thumbnail: "+p.ThumbnailURL)
		}
		b.WriteString(m.theme.Box.Render(preview) + "\n")
	}

	if snap.Error != "" {
		b.WriteString(m.theme.ErrorStyle.Render(snap.Error) + "\n")
	}
	if snap.Success != "" {
		b.WriteString(m.theme.SuccessStyle.Render(snap.Success) + "\n")
		if snap.FilePath != "" {
			b.WriteString(m.theme.Subtle.Render(snap.FilePath) + "\n")
		}
	}
	if snap.Toast != nil {
		b.WriteString(m.theme.Toast.Render(snap.Toast.Message) + "\n")
	}

	b.WriteString("\n" + m.help.View(screenKeys{m.keys}))
}
