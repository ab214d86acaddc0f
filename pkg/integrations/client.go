package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/httputil"
	"github.com/matzehuels/familytree/pkg/observability"
)

// Client provides shared HTTP functionality for service API clients.
// It handles response caching, GET retries, hooks and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	retries   int
	backoff   time.Duration
}

// NewClient creates a Client with the given cache and default headers.
// namespace is folded into every cache key; ttl is the lifetime of cached
// responses. Pass nil for c to disable caching and nil for headers if no
// default headers are needed.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		backoff:   500 * time.Millisecond,
	}
}

// WithKeyer replaces the cache key builder.
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	if k != nil {
		c.keyer = k
	}
	return c
}

// WithRetries sets how many times a failed GET is retried. Only transport
// failures and 5xx responses are retried. Writes are never retried.
func (c *Client) WithRetries(n int) *Client {
	c.retries = max(n, 0)
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.http = h
	}
	return c
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	k := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, k); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, "http")
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, k, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

// Peek decodes the cached response for key into v without fetching. It
// reports whether a usable entry was found.
func (c *Client) Peek(ctx context.Context, key string, v any) bool {
	data, ok, err := c.cache.Get(ctx, c.keyer.HTTPKey(c.namespace, key))
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// Invalidate drops cached responses for the given keys.
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		_ = c.cache.Delete(ctx, c.keyer.HTTPKey(c.namespace, key))
	}
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// Retries follow [Client.WithRetries].
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	err := httputil.Retry(ctx, c.retries+1, c.backoff, func() error {
		body, err := c.do(ctx, http.MethodGet, rawURL, "", nil, c.retries > 0)
		if err != nil {
			return err
		}
		return decode(http.MethodGet, rawURL, body, v)
	})
	var re *httputil.RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}

// SendJSON encodes payload as JSON, sends it with method and decodes the
// response into v. v may be nil when the response body is not needed.
func (c *Client) SendJSON(ctx context.Context, method, rawURL string, payload, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.Send(ctx, method, rawURL, "application/json", bytes.NewReader(data), v)
}

// Send sends body with the given content type and decodes the response into
// v. v may be nil.
func (c *Client) Send(ctx context.Context, method, rawURL, contentType string, body io.Reader, v any) error {
	resp, err := c.do(ctx, method, rawURL, contentType, body, false)
	if err != nil {
		return err
	}
	if v == nil {
		resp.Close()
		return nil
	}
	return decode(method, rawURL, resp, v)
}

// Delete performs an HTTP DELETE. Any 2xx status, including 204, succeeds.
func (c *Client) Delete(ctx context.Context, rawURL string) error {
	return c.Send(ctx, http.MethodDelete, rawURL, "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, rawURL, contentType string, body io.Reader, retryable bool) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	host, path := splitURL(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		apiErr := &APIError{Method: method, URL: rawURL, Err: err}
		if retryable && ctx.Err() == nil {
			return nil, &httputil.RetryableError{Err: apiErr}
		}
		return nil, apiErr
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(method, rawURL, resp); err != nil {
		resp.Body.Close()
		if retryable && resp.StatusCode >= 500 {
			return nil, &httputil.RetryableError{Err: err}
		}
		return nil, err
	}
	return resp.Body, nil
}

func decode(method, rawURL string, body io.ReadCloser, v any) error {
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return &APIError{Method: method, URL: rawURL, Err: err}
	}
	return nil
}

func checkStatus(method, rawURL string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Method:     method,
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(excerpt)),
	}
}

func splitURL(rawURL string) (host, path string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
