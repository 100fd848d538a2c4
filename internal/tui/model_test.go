package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidgrab/vidgrab/internal/app"
	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

const tiktokLink = "https://www.tiktok.com/@user/video/7300"

type stubBackend struct{}

func (stubBackend) Preview(ctx context.Context, spec domain.PlatformSpec, url string) (*domain.PreviewResult, error) {
	return &domain.PreviewResult{MediaURL: "https://cdn.example.com/v.mp4", Title: "Dance Clip"}, nil
}

func (stubBackend) OpenStream(ctx context.Context, spec domain.PlatformSpec, req domain.DownloadRequest) (domain.EventStream, error) {
	return nil, context.Canceled
}

func (stubBackend) ArtifactURL(spec domain.PlatformSpec, token string) string { return token }

type stubClipboard struct{ text string }

func (c *stubClipboard) ReadText() (string, error) { return c.text, nil }
func (c *stubClipboard) WriteText(text string) error {
	c.text = text
	return nil
}

func newTestModel(t *testing.T) (Model, *app.Application) {
	t.Helper()
	config := domain.DefaultConfig()
	config.Storage.DatabasePath = filepath.Join(t.TempDir(), "vidgrab.db")

	application, err := app.NewApplication(config, zap.NewNop(),
		app.WithBackend(stubBackend{}),
		app.WithClipboard(&stubClipboard{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	return New(context.Background(), application.Shell), application
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func TestModel_ComingSoonStaysOnMenu(t *testing.T) {
	m, _ := newTestModel(t)

	for i := 0; i < 10; i++ {
		m, _ = press(t, m, keyMsg(tea.KeyDown))
	}
	assert.Equal(t, len(m.platforms)-1, m.cursor, "cursor stops at the last entry")

	m, cmd := press(t, m, keyMsg(tea.KeyEnter))

	assert.Equal(t, viewMenu, m.view)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "is under development. Please check back later!")
}

func TestModel_PreviewFlow(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, keyMsg(tea.KeyDown))
	m, _ = press(t, m, keyMsg(tea.KeyDown))
	require.Equal(t, domain.PlatformTikTok, m.platforms[m.cursor].Platform)

	m, cmd := press(t, m, keyMsg(tea.KeyEnter))
	require.Equal(t, viewScreen, m.view)
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, domain.StateIdle, m.snap.State)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tiktokLink)})
	assert.Equal(t, tiktokLink, m.input.Value())

	m, cmd = press(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	done, ok := cmd().(actionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	m.snap = m.screen.Snapshot()
	view := m.View()
	assert.Contains(t, view, "Dance Clip")
	assert.Contains(t, view, "https://cdn.example.com/v.mp4")

	m, _ = press(t, m, keyMsg(tea.KeyEsc))
	assert.Equal(t, viewMenu, m.view)
	assert.Nil(t, m.screen)
}

func TestModel_InvalidLinkHint(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, keyMsg(tea.KeyDown))
	m, _ = press(t, m, keyMsg(tea.KeyEnter))
	require.Equal(t, viewScreen, m.view)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("https://www.instagram.com/p/x/")})

	assert.Contains(t, m.View(), "Only Instagram Reel links are supported")
}

func TestModel_ToggleTheme(t *testing.T) {
	m, application := newTestModel(t)
	require.False(t, m.theme.Dark)

	m, _ = press(t, m, keyMsg(tea.KeyCtrlT))

	assert.True(t, m.theme.Dark)
	assert.True(t, application.Shell.DarkMode())
}

func TestModel_StaleSubscriptionIsIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	old := make(chan domain.Snapshot)

	next, _ := m.Update(snapshotMsg{snap: domain.Snapshot{State: domain.StateFailed}, updates: old})
	m = next.(Model)

	assert.Empty(t, m.snap.State)
}
