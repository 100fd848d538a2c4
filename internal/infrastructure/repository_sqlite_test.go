package infrastructure

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidgrab/vidgrab/internal/domain"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	repo, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHistory_CreateAndFind(t *testing.T) {
	repo := setupTestRepo(t)

	entry := domain.NewHistoryEntry(domain.PlatformTikTok, "https://www.tiktok.com/@a/video/1", "clip", domain.HistorySucceeded)
	entry.FilePath = "/tmp/clip.mp4"
	require.NoError(t, repo.Create(entry))

	found, err := repo.FindByID(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.URL, found.URL)
	assert.Equal(t, domain.HistorySucceeded, found.Status)
	assert.Equal(t, "/tmp/clip.mp4", found.FilePath)
}

func TestHistory_FindByIDMissing(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.FindByID("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory_DeleteMissingIsNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	entry := domain.NewHistoryEntry(domain.PlatformFacebook, "https://fb.watch/x", "", domain.HistoryFailed)
	require.NoError(t, repo.Create(entry))

	require.NoError(t, repo.Delete(entry.ID))
	assert.ErrorIs(t, repo.Delete(entry.ID), domain.ErrNotFound)
}

func TestHistory_FindAllFiltersAndOrders(t *testing.T) {
	repo := setupTestRepo(t)

	base := time.Now().Add(-time.Hour)
	for i, tc := range []struct {
		platform domain.Platform
		status   domain.HistoryStatus
	}{
		{domain.PlatformTikTok, domain.HistorySucceeded},
		{domain.PlatformTikTok, domain.HistoryFallback},
		{domain.PlatformInstagram, domain.HistoryFailed},
	} {
		entry := domain.NewHistoryEntry(tc.platform, "https://example.com", "", tc.status)
		entry.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(entry))
	}

	all, err := repo.FindAll(domain.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.PlatformInstagram, all[0].Platform, "newest first")

	tiktok, err := repo.FindAll(domain.HistoryFilter{Platform: domain.PlatformTikTok})
	require.NoError(t, err)
	assert.Len(t, tiktok, 2)

	fallback, err := repo.FindAll(domain.HistoryFilter{Status: domain.HistoryFallback})
	require.NoError(t, err)
	require.Len(t, fallback, 1)
	assert.Equal(t, domain.PlatformTikTok, fallback[0].Platform)

	limited, err := repo.FindAll(domain.HistoryFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestHistory_GetStats(t *testing.T) {
	repo := setupTestRepo(t)

	for _, status := range []domain.HistoryStatus{
		domain.HistorySucceeded,
		domain.HistorySucceeded,
		domain.HistoryFailed,
		domain.HistoryFallback,
	} {
		require.NoError(t, repo.Create(domain.NewHistoryEntry(domain.PlatformTikTok, "u", "", status)))
	}

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Succeeded)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Fallback)
}

func TestPreferences_GetSetOverwrite(t *testing.T) {
	repo := setupTestRepo(t)

	_, ok, err := repo.Get("theme:darkMode")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set("theme:darkMode", "true"))
	require.NoError(t, repo.Set("theme:darkMode", "false"))

	value, ok, err := repo.Get("theme:darkMode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "false", value)
}

func TestRepository_Ping(t *testing.T) {
	repo := setupTestRepo(t)
	assert.NoError(t, repo.Ping())
}
