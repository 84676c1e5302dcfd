package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"assettrack/internal/client/models"
	"assettrack/internal/common"
	"assettrack/internal/wire"
)

// HTTPClient implements Client over the authority's JSON/HTTP API.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu             sync.Mutex
	token          string
	onUnauthorized func(ctx context.Context)
}

// NewHTTPClient returns a client for the authority at baseURL
// (e.g. "http://tracker.local:8080").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token attached to authenticated calls.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// SetUnauthorizedHandler registers the callback fired once per 401 from an
// authenticated call, before ErrAuthRequired is returned. The handler is
// expected to clear user-scoped local state.
func (c *HTTPClient) SetUnauthorizedHandler(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *HTTPClient) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// do performs one JSON request. A nil out discards the response body.
// Authenticated 401s clear the token, fire the unauthorized handler, and
// surface common.ErrAuthRequired.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, out any, authenticated bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.currentToken())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &common.RemoteError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if authenticated {
			c.mu.Lock()
			c.token = ""
			fn := c.onUnauthorized
			c.mu.Unlock()
			if fn != nil {
				fn(ctx)
			}
		}
		return common.ErrAuthRequired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound {
			return common.ErrNotFound
		}
		data, _ := io.ReadAll(resp.Body)
		return &common.RemoteError{Status: resp.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &common.RemoteError{Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.AuthToken, error) {
	var resp wire.LoginResponse
	req := wire.LoginRequest{Username: username, Password: password}

	// a 401 here means bad credentials, not a stale session: authenticated=false
	// keeps the unauthorized handler from wiping local state on a typo
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &resp, false); err != nil {
		return nil, err
	}

	token := &models.AuthToken{
		Token:     resp.Token,
		Username:  resp.Username,
		ExpiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	c.SetToken(token.Token)
	return token, nil
}

func (c *HTTPClient) AssetTags(ctx context.Context, since time.Time) ([]wire.AssetTagRecord, error) {
	query := url.Values{}
	if !since.IsZero() {
		query.Set("since", since.UTC().Format(time.RFC3339Nano))
	}

	var records []wire.AssetTagRecord
	if err := c.do(ctx, http.MethodGet, "/asset-tags", query, nil, &records, true); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) RegisterTag(ctx context.Context, tag string) error {
	return c.do(ctx, http.MethodPost, "/asset-tags", nil, wire.RegisterTagRequest{Tag: tag}, nil, true)
}

func (c *HTTPClient) UploadBatch(ctx context.Context, items []wire.BatchItem) ([]wire.BatchItemResult, error) {
	var results []wire.BatchItemResult
	if err := c.do(ctx, http.MethodPost, "/pairs/batch", nil, items, &results, true); err != nil {
		return nil, err
	}
	// positional alignment is load-bearing; a length mismatch means the
	// server broke the wire contract
	if len(results) != len(items) {
		return nil, &common.RemoteError{
			Err: fmt.Errorf("batch response has %d results for %d items", len(results), len(items)),
		}
	}
	return results, nil
}

func (c *HTTPClient) Search(ctx context.Context, assetTag, serial string) (*wire.SearchResult, error) {
	query := url.Values{}
	if assetTag != "" {
		query.Set("asset_tag", assetTag)
	}
	if serial != "" {
		query.Set("serial", serial)
	}

	var result wire.SearchResult
	if err := c.do(ctx, http.MethodGet, "/pairs/search", query, nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Replace(ctx context.Context, req wire.ReplaceRequest) (*wire.ReplaceResponse, error) {
	var resp wire.ReplaceResponse
	if err := c.do(ctx, http.MethodPut, "/pairs/replace", nil, req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil, false)
}

// Probe satisfies netx.Prober so the client doubles as the connectivity
// probe source.
func (c *HTTPClient) Probe(ctx context.Context) error {
	return c.Ping(ctx)
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
