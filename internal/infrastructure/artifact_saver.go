package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gofrs/flock"
	"github.com/h2non/filetype"
	"github.com/vfaronov/httpheader"
	"go.uber.org/zap"
)

const sniffLen = 512

// FileSaver retrieves finished artifacts from the backend into a directory
type FileSaver struct {
	dir    string
	client *http.Client
	logger *zap.Logger
}

// NewFileSaver creates a saver writing into dir
func NewFileSaver(dir string, logger *zap.Logger) *FileSaver {
	return &FileSaver{
		dir:    dir,
		client: &http.Client{},
		logger: logger,
	}
}

// Save downloads artifactURL and stores it under name. When name is empty the
// Content-Disposition filename is used, then fallback. A missing extension is
// sniffed from the first bytes of the body. Existing files are never overwritten.
func (s *FileSaver) Save(ctx context.Context, artifactURL, name, fallback string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected artifact status: %d", resp.StatusCode)
	}

	if name == "" {
		name = fallback
		if _, disposition, err := httpheader.ContentDisposition(resp.Header); err == nil && disposition != "" {
			name = disposition
		}
	}
	name = sanitizeFileName(name)

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(resp.Body, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read artifact: %w", err)
	}
	header = header[:n]

	if filepath.Ext(name) == "" {
		if kind, _ := filetype.Match(header); kind != filetype.Unknown && kind.Extension != "" {
			name = name + "." + kind.Extension
		}
	}

	tmp, err := os.CreateTemp(s.dir, ".vidgrab-*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, copyErr := io.Copy(tmp, io.MultiReader(bytes.NewReader(header), resp.Body))
	closeErr := tmp.Close()
	if copyErr != nil {
		return "", fmt.Errorf("failed to write artifact: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to write artifact: %w", closeErr)
	}

	target, err := s.commit(ctx, tmpPath, name)
	if err != nil {
		return "", err
	}

	s.logger.Info("Artifact saved",
		zap.String("path", target),
		zap.String("source", artifactURL))
	return target, nil
}

// commit moves the temporary file to a free name. The directory lock keeps
// a concurrent CLI and server from claiming the same name.
func (s *FileSaver) commit(ctx context.Context, tmpPath, name string) (string, error) {
	lock := flock.New(filepath.Join(s.dir, ".vidgrab.lock"))
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return "", fmt.Errorf("failed to lock download directory: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("failed to lock download directory")
	}
	defer lock.Unlock()

	target := uniquePath(filepath.Join(s.dir, name))
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return target, nil
}

// uniquePath appends " (n)" before the extension until the path is free
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// sanitizeFileName keeps only the base name and drops characters that are
// unsafe on common file systems
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		switch r {
		case '<', '>', ':', '"', '|', '?', '*':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "/" {
		return "video"
	}
	return name
}
