package catalog

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

	"productgen/internal/errs"
	"productgen/internal/logger"
)

// Client talks to the store's catalog REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, token string, logger *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// CreateProduct creates a product and returns its catalog id.
func (c *Client) CreateProduct(ctx context.Context, product *Product) (int64, error) {
	var created Product
	if err := c.do(ctx, http.MethodPost, "/products", ProductPayload{Product: *product}, &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("%w: catalog returned no product id", errs.ErrUpstream)
	}
	return created.ID, nil
}

// UpdateProduct updates an existing product.
func (c *Client) UpdateProduct(ctx context.Context, productID int64, product *Product) error {
	product.ID = productID
	path := fmt.Sprintf("/products/%d", productID)
	return c.do(ctx, http.MethodPut, path, ProductPayload{Product: *product}, nil)
}

// GetProduct fetches a single product by ID
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductUpdatedAt returns the product's updated_at, or nil when the catalog has none.
func (c *Client) ProductUpdatedAt(ctx context.Context, productID int64) (*time.Time, error) {
	product, err := c.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ParseTimestamp(product.UpdatedAt)
}

func (c *Client) GetAttribute(ctx context.Context, code string) (*Attribute, error) {
	var attr Attribute
	path := "/products/attributes/" + url.PathEscape(code)
	if err := c.do(ctx, http.MethodGet, path, nil, &attr); err != nil {
		return nil, err
	}
	return &attr, nil
}

// AttributeInputType returns the frontend input of an attribute ("text", "multiselect", ...).
func (c *Client) AttributeInputType(ctx context.Context, code string) (string, error) {
	attr, err := c.GetAttribute(ctx, code)
	if err != nil {
		return "", err
	}
	return attr.FrontendInput, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to make request: %v", errs.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: catalog %s", errs.ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: API request failed: %d - %s", errs.ErrUpstream, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", errs.ErrUpstream, err)
	}
	return nil
}
