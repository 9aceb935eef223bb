package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/HerbHall/brandkit/internal/server"
	"github.com/HerbHall/brandkit/internal/settings"
	"github.com/HerbHall/brandkit/pkg/models"
)

const brandingPath = "/api/v1/branding"

// apiError is a problem response from the daemon.
type apiError struct {
	Status int
	Title  string
	Detail string
}

func (e *apiError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("daemon returned %d %s", e.Status, e.Title)
	}
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Detail)
}

// apiClient talks to the brandingd branding API.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *apiClient) Get(ctx context.Context) (models.ThemeConfig, error) {
	var cfg models.ThemeConfig
	err := c.do(ctx, http.MethodGet, brandingPath, nil, "", &cfg)
	return cfg, err
}

func (c *apiClient) Update(ctx context.Context, patch models.ThemePatch) (settings.UpdateResponse, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return settings.UpdateResponse{}, fmt.Errorf("encode patch: %w", err)
	}
	var res settings.UpdateResponse
	err = c.do(ctx, http.MethodPut, brandingPath, bytes.NewReader(body), "application/json", &res)
	return res, err
}

func (c *apiClient) Reset(ctx context.Context) (settings.UpdateResponse, error) {
	var res settings.UpdateResponse
	err := c.do(ctx, http.MethodPost, brandingPath+"/reset", nil, "", &res)
	return res, err
}

func (c *apiClient) Refresh(ctx context.Context) (settings.RefreshResponse, error) {
	var res settings.RefreshResponse
	err := c.do(ctx, http.MethodPost, brandingPath+"/refresh", nil, "", &res)
	return res, err
}

// Upload sends a logo or favicon. kind is "logo" or "favicon" and doubles as
// the form field name.
func (c *apiClient) Upload(ctx context.Context, kind, filename string, r io.Reader) (settings.UpdateResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(kind, filename)
	if err != nil {
		return settings.UpdateResponse{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return settings.UpdateResponse{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return settings.UpdateResponse{}, fmt.Errorf("close multipart body: %w", err)
	}

	var res settings.UpdateResponse
	err = c.do(ctx, http.MethodPost, brandingPath+"/"+kind, &buf, mw.FormDataContentType(), &res)
	return res, err
}

func (c *apiClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var problem server.Problem
		_ = json.NewDecoder(resp.Body).Decode(&problem)
		return &apiError{Status: resp.StatusCode, Title: problem.Title, Detail: problem.Detail}
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
