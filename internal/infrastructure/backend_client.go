package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vidgrab/vidgrab/internal/domain"
	"go.uber.org/zap"
)

const maxPreviewBody = 4 << 20

// BackendClient talks to the extraction backend over HTTP
type BackendClient struct {
	baseURL      string
	userAgent    string
	probeTimeout time.Duration
	client       *http.Client
	streamClient *http.Client
	logger       *zap.Logger
}

// NewBackendClient creates a client for the configured backend
func NewBackendClient(config *domain.BackendConfig, logger *zap.Logger) *BackendClient {
	return &BackendClient{
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		userAgent:    config.UserAgent,
		probeTimeout: config.ProbeTimeout,
		client:       &http.Client{Timeout: config.Timeout},
		// progress streams stay open for the whole download
		streamClient: &http.Client{},
		logger:       logger,
	}
}

type previewPayload struct {
	URL string `json:"url"`
}

type previewResponse struct {
	VideoURL  string `json:"videoUrl"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	EmbedHTML string `json:"embedHtml"`
	Error     string `json:"error"`
}

func (c *BackendClient) endpoint(spec domain.PlatformSpec, suffix string) string {
	return c.baseURL + spec.BasePath + suffix
}

func (c *BackendClient) setHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// Preview posts the cleaned URL to the platform's preview endpoint
func (c *BackendClient) Preview(ctx context.Context, spec domain.PlatformSpec, rawURL string) (*domain.PreviewResult, error) {
	body, err := json.Marshal(previewPayload{URL: rawURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(spec, "/preview"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create preview request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setHeaders(req)

	c.logger.Debug("Requesting preview",
		zap.String("platform", string(spec.Platform)),
		zap.String("url", rawURL))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.PreviewError{Reason: domain.PreviewNetwork, Err: err}
	}
	defer resp.Body.Close()

	var data previewResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxPreviewBody)).Decode(&data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.PreviewError{
			Reason:     domain.PreviewStatus,
			StatusCode: resp.StatusCode,
			Message:    data.Error,
		}
	}
	if decodeErr != nil {
		return nil, &domain.PreviewError{Reason: domain.PreviewDecode, Err: decodeErr}
	}
	if data.VideoURL == "" {
		message := data.Error
		if message == "" {
			message = "no video found for this link"
		}
		return nil, &domain.PreviewError{Reason: domain.PreviewMissingMedia, Message: message}
	}

	if spec.ProbePreview {
		if err := c.probe(ctx, data.VideoURL); err != nil {
			return nil, err
		}
	}

	result := &domain.PreviewResult{
		MediaURL:     data.VideoURL,
		Title:        data.Title,
		ThumbnailURL: data.Thumbnail,
		EmbedHTML:    data.EmbedHTML,
	}
	if data.EmbedHTML != "" {
		embed, err := ParseEmbed(data.EmbedHTML)
		if err != nil {
			c.logger.Debug("Embed markup carried no metadata", zap.Error(err))
		} else {
			result.Embed = embed
			if result.ThumbnailURL == "" {
				result.ThumbnailURL = embed.ThumbnailURL
			}
		}
	}

	return result, nil
}

// probe checks that the preview media answers a HEAD request with 200
func (c *BackendClient) probe(ctx context.Context, mediaURL string) error {
	if c.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.probeTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, mediaURL, nil)
	if err != nil {
		return &domain.PreviewError{Reason: domain.PreviewProbe, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.PreviewError{Reason: domain.PreviewProbe, Err: err}
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.PreviewError{
			Reason:     domain.PreviewProbe,
			StatusCode: resp.StatusCode,
			Message:    "video URL is not accessible",
		}
	}
	return nil
}

// OpenStream opens the server-sent progress channel for a download
func (c *BackendClient) OpenStream(ctx context.Context, spec domain.PlatformSpec, request domain.DownloadRequest) (domain.EventStream, error) {
	query := url.Values{}
	query.Set("url", request.URL)
	if spec.SendTitle {
		query.Set("title", request.SanitizedTitle)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(spec, "/download/stream")+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.setHeaders(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected stream status: %d", resp.StatusCode)
	}

	c.logger.Debug("Progress stream opened",
		zap.String("platform", string(spec.Platform)),
		zap.String("url", request.URL))

	return newSSEStream(resp.Body, c.logger), nil
}

// ArtifactURL returns the retrieval URL for a finished file token
func (c *BackendClient) ArtifactURL(spec domain.PlatformSpec, token string) string {
	return c.endpoint(spec, "/download") + "?filename=" + url.QueryEscape(token)
}
