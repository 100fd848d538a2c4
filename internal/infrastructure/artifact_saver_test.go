package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// minimal MP4 ftyp box
var mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}

func artifactServer(t *testing.T, disposition string, body []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filename") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if disposition != "" {
			w.Header().Set("Content-Disposition", disposition)
		}
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFileSaver_SavesUnderGivenName(t *testing.T) {
	dir := t.TempDir()
	server := artifactServer(t, "", []byte("video-bytes"))

	saver := NewFileSaver(dir, zap.NewNop())
	path, err := saver.Save(context.Background(), server.URL+"/download?filename=a.mp4", "My_Clip.mp4", "a.mp4")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "My_Clip.mp4"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
}

func TestFileSaver_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	server := artifactServer(t, "", []byte("second"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("first"), 0644))

	path, err := NewFileSaver(dir, zap.NewNop()).Save(context.Background(), server.URL, "clip.mp4", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clip (1).mp4"), path)

	first, _ := os.ReadFile(filepath.Join(dir, "clip.mp4"))
	assert.Equal(t, "first", string(first))
}

func TestFileSaver_UsesContentDispositionAndSniffsExtension(t *testing.T) {
	dir := t.TempDir()
	server := artifactServer(t, `attachment; filename="server name"`, mp4Header)

	path, err := NewFileSaver(dir, zap.NewNop()).Save(context.Background(), server.URL, "", "token")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "server name.mp4"), path)
}

func TestFileSaver_FallsBackWithoutContentDisposition(t *testing.T) {
	dir := t.TempDir()
	server := artifactServer(t, "", []byte("video-bytes"))

	path, err := NewFileSaver(dir, zap.NewNop()).Save(context.Background(), server.URL, "", "abc123")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc123"), path)
}

func TestFileSaver_GivenNameBeatsContentDisposition(t *testing.T) {
	dir := t.TempDir()
	server := artifactServer(t, `attachment; filename="server.mp4"`, []byte("x"))

	path, err := NewFileSaver(dir, zap.NewNop()).Save(context.Background(), server.URL, "Title.mp4", "abc123.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Title.mp4"), path)
}

func TestFileSaver_StripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	server := artifactServer(t, "", []byte("x"))

	path, err := NewFileSaver(dir, zap.NewNop()).Save(context.Background(), server.URL, "../../etc/passwd.mp4", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd.mp4"), path)
}

func TestFileSaver_BadStatus(t *testing.T) {
	dir := t.TempDir()
	server := artifactServer(t, "", nil)

	_, err := NewFileSaver(dir, zap.NewNop()).Save(context.Background(), server.URL+"?filename=missing", "x.mp4", "")
	assert.Error(t, err)

	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".part", "temporary files are cleaned up")
	}
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "video", sanitizeFileName(""))
	assert.Equal(t, "a_b.mp4", sanitizeFileName("a:b.mp4"))
	assert.Equal(t, "hidden", sanitizeFileName(".hidden"))
	assert.Equal(t, "clip.mp4", sanitizeFileName(`C:\videos\clip.mp4`))
}
