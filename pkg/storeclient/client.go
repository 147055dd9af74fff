// Package storeclient is the typed HTTP client for the storefront REST API.
// Every call returns either a decoded payload or a *pkgerrors.Error: API
// failures keep the server's code and message, and transport failures are
// reported as CodeDependency.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/angelmondragon/shoefinderz-backend/pkg/catalog"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/pagination"
	"github.com/angelmondragon/shoefinderz-backend/pkg/types"
)

const (
	apiPrefix                    = "/api/v1"
	defaultTimeout               = 15 * time.Second
	errorBodyReadLimit     int64 = 64 << 10
	responseBodyReadLimit  int64 = 64 << 20
	idempotencyKeyHeader         = "Idempotency-Key"
	contentTypeApplication       = "application/json"
)

var errBaseURLRequired = errors.New("store api base url is required")

// Client talks to one storefront API deployment.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout replaces the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

// NewClient builds a client for the API rooted at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid store api base url: %w", err)
	}

	client := &Client{
		baseURL:    strings.TrimSuffix(trimmed, apiPrefix),
		httpClient: &http.Client{Timeout: defaultTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProducts returns the catalog, optionally filtered by category.
func (c *Client) ListProducts(ctx context.Context, category string) ([]catalog.Product, error) {
	query := url.Values{}
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		query.Set("category", trimmed)
	}
	var out []catalog.Product
	if err := c.do(ctx, call{method: http.MethodGet, path: "/products", query: query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduct adds a product. Requires an admin token.
func (c *Client) CreateProduct(ctx context.Context, token string, input catalog.ProductInput) (*catalog.Product, error) {
	var out catalog.Product
	if err := c.do(ctx, call{method: http.MethodPost, path: "/products", token: token, body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces a product's fields. Requires an admin token.
func (c *Client) UpdateProduct(ctx context.Context, token string, id uuid.UUID, input catalog.ProductInput) (*catalog.Product, error) {
	var out catalog.Product
	if err := c.do(ctx, call{method: http.MethodPut, path: "/products/" + id.String(), token: token, body: input}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a product. Requires an admin token.
func (c *Client) DeleteProduct(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/products/" + id.String(), token: token}, nil)
}

// PlaceOrder submits an order. The key is sent as the Idempotency-Key header.
func (c *Client) PlaceOrder(ctx context.Context, token, idempotencyKey string, req types.OrderRequest) (*types.Order, error) {
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	var out types.Order
	err := c.do(ctx, call{
		method:  http.MethodPost,
		path:    "/orders",
		token:   token,
		body:    req,
		headers: map[string]string{idempotencyKeyHeader: idempotencyKey},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns a page of orders, newest first. Requires an admin token.
func (c *Client) ListOrders(ctx context.Context, token string, params pagination.Params) (*types.OrderPage, error) {
	query := url.Values{}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Cursor != "" {
		query.Set("cursor", params.Cursor)
	}
	var out types.OrderPage
	if err := c.do(ctx, call{method: http.MethodGet, path: "/orders", token: token, query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrder returns one order with its display breakdown. Requires an admin token.
func (c *Client) GetOrder(ctx context.Context, token string, id uuid.UUID) (*types.OrderDetail, error) {
	var out types.OrderDetail
	if err := c.do(ctx, call{method: http.MethodGet, path: "/orders/" + id.String(), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	var out types.AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, req types.SignupRequest) (*types.AuthResponse, error) {
	var out types.AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/signup", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates the session. The current access token may be expired.
func (c *Client) Refresh(ctx context.Context, accessToken, refreshToken string) (*types.TokenPair, error) {
	var out types.TokenPair
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/refresh",
		token:  accessToken,
		body:   types.RefreshRequest{RefreshToken: refreshToken},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the server-side session bound to token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/auth/logout", token: token}, nil)
}

type call struct {
	method  string
	path    string
	token   string
	query   url.Values
	headers map[string]string
	body    any
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "store api client not configured")
	}

	endpoint := c.baseURL + apiPrefix + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode request body")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	req.Header.Set("Accept", contentTypeApplication)
	if cl.body != nil {
		req.Header.Set("Content-Type", contentTypeApplication)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	for k, v := range cl.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s failed", cl.method, cl.path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response envelope")
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return pkgerrors.New(pkgerrors.CodeDependency, "response carried no data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}

// decodeError turns a non-2xx response into a typed error. Responses without
// an error envelope are mapped from their status code.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Valid() {
		apiErr := pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
		if envelope.Error.Details != nil {
			apiErr = apiErr.WithDetails(envelope.Error.Details)
		}
		return apiErr
	}

	code := pkgerrors.CodeForStatus(resp.StatusCode)
	return pkgerrors.Wrap(code, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), "unexpected api response")
}
