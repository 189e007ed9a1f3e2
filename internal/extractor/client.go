package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/darwin242209/LuminaTiktok/internal/config"
	"github.com/darwin242209/LuminaTiktok/internal/domain"
)

// Client resolves short video URLs to direct downloadable media URLs.
type Client interface {
	// Resolve queries the extraction API for the given short video URL.
	Resolve(ctx context.Context, sourceURL string) (*domain.ResolvedMedia, error)
}

// HTTPClient implements Client against a tikwm-compatible extraction API.
type HTTPClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewHTTPClient creates a new extraction API client.
func NewHTTPClient(cfg config.ExtractorConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// apiResponse is the extraction API response envelope.
type apiResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Play     string `json:"play"`
		HDPlay   string `json:"hdplay"`
		Title    string `json:"title"`
		Duration int    `json:"duration"`
	} `json:"data"`
}

// Resolve queries the extraction API for a direct media URL.
func (c *HTTPClient) Resolve(ctx context.Context, sourceURL string) (*domain.ResolvedMedia, error) {
	reqURL, err := c.buildURL(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("build request URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction API status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if parsed.Code != 0 {
		return nil, fmt.Errorf("extraction API error (%s): %w", parsed.Msg, domain.ErrNoMediaURL)
	}

	// Prefer the HD rendition when offered.
	direct := parsed.Data.HDPlay
	if direct == "" {
		direct = parsed.Data.Play
	}
	if direct == "" {
		return nil, domain.ErrNoMediaURL
	}

	direct, err = c.absoluteURL(direct)
	if err != nil {
		return nil, fmt.Errorf("resolve media URL: %w", err)
	}

	return &domain.ResolvedMedia{
		DirectURL: direct,
		Title:     parsed.Data.Title,
		Duration:  parsed.Data.Duration,
	}, nil
}

func (c *HTTPClient) buildURL(sourceURL string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("url", sourceURL)
	q.Set("hd", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// absoluteURL resolves media paths returned relative to the API host.
func (c *HTTPClient) absoluteURL(media string) (string, error) {
	m, err := url.Parse(media)
	if err != nil {
		return "", err
	}
	if m.IsAbs() {
		return media, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(m).String(), nil
}
