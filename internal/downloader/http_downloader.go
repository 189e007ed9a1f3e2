package downloader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/darwin242209/LuminaTiktok/internal/config"
	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

// Downloader fetches media bytes from direct URLs.
type Downloader interface {
	// Download fetches the media at url. Returns the raw bytes and a
	// suggested filename taken from the Content-Disposition header, or the
	// configured default when absent or malformed. Does not touch disk;
	// the caller owns persistence.
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// HTTPDownloader implements Downloader using HTTP requests.
type HTTPDownloader struct {
	client          *http.Client
	userAgent       string
	defaultFilename string
}

// NewHTTPDownloader creates a new HTTP-based media downloader.
func NewHTTPDownloader(cfg config.DownloadConfig) *HTTPDownloader {
	transport := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
	}

	return &HTTPDownloader{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		userAgent:       cfg.UserAgent,
		defaultFilename: cfg.DefaultFilename,
	}
}

// Download fetches media bytes in a single attempt. Failures are not
// retried; the caller treats them as terminal for the job.
func (d *HTTPDownloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "video/mp4,video/*;q=0.9,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("send request: %w: %w", domain.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, domain.ErrDownloadFailed)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w: %w", domain.ErrDownloadFailed, err)
	}

	filename := d.suggestedFilename(resp.Header.Get("Content-Disposition"))
	return data, filename, nil
}

// suggestedFilename extracts a filename from a Content-Disposition header.
// Falls back to the configured default on absent or malformed headers.
func (d *HTTPDownloader) suggestedFilename(contentDisposition string) string {
	if contentDisposition == "" {
		return d.defaultFilename
	}

	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		return d.defaultFilename
	}

	name := params["filename"]
	if name == "" {
		return d.defaultFilename
	}

	// Strip any path components a hostile server might smuggle in.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		return d.defaultFilename
	}

	return name
}
