// Package remote is the client for the remote config service that owns the
// authoritative app-settings record.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/HerbHall/brandkit/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const settingsPath = "/app-settings"

var (
	// ErrNotFound means the service holds no settings record yet.
	ErrNotFound = errors.New("app settings not found")
	// ErrMalformedResponse means the service answered 2xx with a body that
	// could not be decoded.
	ErrMalformedResponse = errors.New("malformed response body")
)

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("config service %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// UploadResult is the service's answer to a logo or favicon upload.
type UploadResult struct {
	LogoURL    string `json:"logo_url,omitempty"`
	FaviconURL string `json:"favicon_url,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Client wraps the config service REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches a bearer token to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRateLimit paces outgoing requests. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSettings fetches the current record. A 404 yields ErrNotFound.
func (c *Client) GetSettings(ctx context.Context) (models.ThemeConfig, error) {
	var cfg models.ThemeConfig
	if err := c.doJSON(ctx, http.MethodGet, settingsPath, nil, &cfg); err != nil {
		return models.ThemeConfig{}, fmt.Errorf("get settings: %w", err)
	}
	return cfg, nil
}

// UpdateSettings sends a partial record and returns the full record the
// service stored.
func (c *Client) UpdateSettings(ctx context.Context, patch models.ThemePatch) (models.ThemeConfig, error) {
	var cfg models.ThemeConfig
	if err := c.doJSON(ctx, http.MethodPut, settingsPath, patch, &cfg); err != nil {
		return models.ThemeConfig{}, fmt.Errorf("update settings: %w", err)
	}
	return cfg, nil
}

// UploadLogo uploads a logo image and returns the stored URL.
func (c *Client) UploadLogo(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	res, err := c.upload(ctx, settingsPath+"/logo", "logo", filename, r)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload logo: %w", err)
	}
	if res.LogoURL == "" {
		return UploadResult{}, fmt.Errorf("upload logo: %w: missing logo_url", ErrMalformedResponse)
	}
	return res, nil
}

// UploadFavicon uploads a favicon and returns the stored URL.
func (c *Client) UploadFavicon(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	res, err := c.upload(ctx, settingsPath+"/favicon", "favicon", filename, r)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload favicon: %w", err)
	}
	if res.FaviconURL == "" {
		return UploadResult{}, fmt.Errorf("upload favicon: %w: missing favicon_url", ErrMalformedResponse)
	}
	return res, nil
}

func (c *Client) upload(ctx context.Context, path, field, filename string, r io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResult{}, fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("close multipart writer: %w", err)
	}

	var res UploadResult
	if err := c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), &res); err != nil {
		return UploadResult{}, err
	}
	return res, nil
}

// doJSON performs a request with a JSON body and decodes a JSON answer.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reqBody, contentType, result)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("config service request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if len(bytes.TrimSpace(respBody)) == 0 {
			return fmt.Errorf("%w: empty body", ErrMalformedResponse)
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return nil
}
