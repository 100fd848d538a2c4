package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

func TestApplication_EndToEndWithFakes(t *testing.T) {
	config := domain.DefaultConfig()
	config.Storage.DatabasePath = filepath.Join(t.TempDir(), "vidgrab.db")
	config.Download = *testDownloadConfig()

	backend := &fakeBackend{}
	backend.addStreams(newFakeStream(step(domain.DoneEvent("clip.mp4"))))
	saver := &fakeSaver{}
	notifier := &fakeNotifier{}

	application, err := NewApplication(config, zap.NewNop(),
		WithBackend(backend),
		WithSaver(saver),
		WithLinkOpener(&fakeOpener{}),
		WithClipboard(&fakeClipboard{}),
		WithNotifier(notifier),
	)
	require.NoError(t, err)
	defer application.Close()

	require.NoError(t, application.Ready())

	screen, err := application.Shell.Screen(domain.PlatformTikTok)
	require.NoError(t, err)
	require.NoError(t, screen.Preview(context.Background(), tiktokURL))
	require.NoError(t, screen.Download())

	snap, err := screen.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateSucceeded, snap.State)
	assert.Equal(t, "/downloads/Sample_Clip.mp4", snap.FilePath)

	entries, err := application.Shell.History(domain.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.HistorySucceeded, entries[0].Status)
	assert.Equal(t, "/downloads/Sample_Clip.mp4", entries[0].FilePath)
}

func TestApplication_OnlyActivePlatformsHaveScreens(t *testing.T) {
	config := domain.DefaultConfig()
	config.Storage.DatabasePath = filepath.Join(t.TempDir(), "vidgrab.db")

	application, err := NewApplication(config, zap.NewNop(), WithBackend(&fakeBackend{}), WithNotifier(&fakeNotifier{}))
	require.NoError(t, err)
	defer application.Close()

	_, err = application.Shell.Screen(domain.PlatformYouTube)
	assert.ErrorIs(t, err, domain.ErrPlatformUnavailable)
}

func TestApplication_ThemeSurvivesRestart(t *testing.T) {
	config := domain.DefaultConfig()
	config.Storage.DatabasePath = filepath.Join(t.TempDir(), "vidgrab.db")

	first, err := NewApplication(config, zap.NewNop(), WithBackend(&fakeBackend{}), WithNotifier(&fakeNotifier{}))
	require.NoError(t, err)
	first.Shell.SetDarkMode(true)
	require.NoError(t, first.Close())

	second, err := NewApplication(config, zap.NewNop(), WithBackend(&fakeBackend{}), WithNotifier(&fakeNotifier{}))
	require.NoError(t, err)
	defer second.Close()
	assert.True(t, second.Shell.DarkMode())
}
