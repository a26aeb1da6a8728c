package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"productgen/internal/errs"
	"productgen/internal/logger"
	"productgen/internal/models"
)

// SettingSource supplies the API base URL and key, which admins can change at runtime.
type SettingSource interface {
	Value(ctx context.Context, path string) string
}

// Client talks to the AI content API. Calls are synchronous and never retried.
type Client struct {
	settings   SettingSource
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(settings SettingSource, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		settings: settings,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Health checks the API is reachable.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, "", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Login exchanges credentials for a temporary access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var token TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, "", &token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: login returned no access token", errs.ErrUpstream)
	}
	return token.AccessToken, nil
}

// ExchangeAPIKey trades a temporary access token for a permanent API key.
func (c *Client) ExchangeAPIKey(ctx context.Context, accessToken string) (string, error) {
	var key APIKeyResponse
	body := map[string]string{"name": "catalog-admin"}
	if err := c.do(ctx, http.MethodPost, "/auth/api-keys", body, accessToken, &key); err != nil {
		return "", err
	}
	if key.APIKey == "" {
		return "", fmt.Errorf("%w: key exchange returned no api key", errs.ErrUpstream)
	}
	return key.APIKey, nil
}

// GenerateProduct asks the API for product content. The API answers with
// {"products": [...]}, {"product": {...}}, {"data": ...} or a bare product object.
func (c *Client) GenerateProduct(ctx context.Context, req GenerateRequest) ([]map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := c.do(ctx, http.MethodPost, "/products/generate", req, c.apiKey(ctx), &raw); err != nil {
		return nil, err
	}
	return extractProducts(raw)
}

func (c *Client) UsageStats(ctx context.Context) (*UsageStats, error) {
	var stats UsageStats
	if err := c.do(ctx, http.MethodGet, "/usage/stats", nil, c.apiKey(ctx), &stats); err != nil {
		return nil, err
	}
	if stats.RequestsLimit > 0 {
		if stats.RequestsRemaining == 0 && stats.RequestsUsed <= stats.RequestsLimit {
			stats.RequestsRemaining = stats.RequestsLimit - stats.RequestsUsed
		}
		stats.UsagePercent = float64(stats.RequestsUsed) * 100 / float64(stats.RequestsLimit)
	}
	return &stats, nil
}

func (c *Client) AccountInfo(ctx context.Context) (*AccountInfo, error) {
	var info AccountInfo
	if err := c.do(ctx, http.MethodGet, "/account", nil, c.apiKey(ctx), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) History(ctx context.Context, page, limit int) (*HistoryPage, error) {
	var history HistoryPage
	path := fmt.Sprintf("/usage/history?page=%d&limit=%d", page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, c.apiKey(ctx), &history); err != nil {
		return nil, err
	}
	return &history, nil
}

func (c *Client) apiKey(ctx context.Context) string {
	return c.settings.Value(ctx, models.SettingAIAPIKey)
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, token string, out interface{}) error {
	base := strings.TrimRight(c.settings.Value(ctx, models.SettingAIBaseURL), "/")
	if base == "" {
		return fmt.Errorf("%w: AI API base URL not configured", errs.ErrUpstream)
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", errs.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("AI API %s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", errs.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: %d - %s", errs.ErrUpstream, method, path, resp.StatusCode, errorMessage(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", errs.ErrUpstream, err)
	}
	return nil
}

func extractProducts(raw map[string]interface{}) ([]map[string]interface{}, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty generation response", errs.ErrUpstream)
	}
	if ok, present := raw["success"].(bool); present && !ok {
		return nil, fmt.Errorf("%w: generation failed: %s", errs.ErrUpstream, messageOf(raw))
	}

	for _, key := range []string{"products", "product", "data"} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case map[string]interface{}:
			return []map[string]interface{}{t}, nil
		case []interface{}:
			out := make([]map[string]interface{}, 0, len(t))
			for _, item := range t {
				if obj, ok := item.(map[string]interface{}); ok {
					out = append(out, obj)
				}
			}
			return out, nil
		}
	}

	if _, hasName := raw["name"]; hasName {
		return []map[string]interface{}{raw}, nil
	}
	if _, hasName := raw["product_name"]; hasName {
		return []map[string]interface{}{raw}, nil
	}
	return nil, fmt.Errorf("%w: unexpected generation response shape", errs.ErrUpstream)
}

func errorMessage(body []byte) string {
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err == nil {
		if msg := messageOf(obj); msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}

func messageOf(obj map[string]interface{}) string {
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
