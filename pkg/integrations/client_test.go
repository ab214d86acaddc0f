package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/familytree/pkg/cache"
)

func newTestClient(t *testing.T, server *httptest.Server, c cache.Cache) *Client {
	t.Helper()
	client := NewClient(c, "test", time.Hour, map[string]string{"X-Default": "default"})
	client.http = server.Client()
	client.backoff = time.Millisecond
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient(nil, "test", time.Hour, nil)
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if _, ok := client.cache.(cache.NullCache); !ok {
		t.Errorf("nil cache should default to NullCache, got %T", client.cache)
	}
	if client.retries != 0 {
		t.Errorf("default retries = %d, want 0", client.retries)
	}
	if client.WithRetries(-3).retries != 0 {
		t.Error("negative retries should clamp to 0")
	}
}

func TestClientGet(t *testing.T) {
	var gotHeader, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotHeader = r.Header.Get("X-Default")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(map[string]string{"full_name": "Anna"})
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	var resp map[string]string
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp["full_name"] != "Anna" {
		t.Errorf("Get() = %v", resp)
	}
	if gotHeader != "default" || gotAccept != "application/json" {
		t.Errorf("headers: X-Default=%q Accept=%q", gotHeader, gotAccept)
	}
}

func TestClientNon2xxIsRequestFailed(t *testing.T) {
	for _, code := range []int{400, 403, 404, 409, 500, 502} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
				io.WriteString(w, `{"error":"nope"}`)
			}))
			defer server.Close()

			client := newTestClient(t, server, nil)
			var v any
			err := client.Get(context.Background(), server.URL, &v)
			if !errors.Is(err, ErrRequestFailed) {
				t.Fatalf("Get() error = %v, want ErrRequestFailed", err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error should be *APIError, got %T", err)
			}
			if apiErr.StatusCode != code {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, code)
			}
			if !strings.Contains(apiErr.Body, "nope") {
				t.Errorf("Body excerpt = %q", apiErr.Body)
			}
		})
	}
}

func TestClientTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	client := newTestClient(t, server, nil)
	server.Close()

	var v any
	err := client.Get(context.Background(), url, &v)
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("transport failure should be ErrRequestFailed, got %v", err)
	}
}

func TestClientBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>")
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	var v map[string]any
	if err := client.Get(context.Background(), server.URL, &v); !errors.Is(err, ErrRequestFailed) {
		t.Errorf("bad JSON should be ErrRequestFailed, got %v", err)
	}
}

func TestClientGetRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"ok":true}`)
	}))
	defer server.Close()

	var v map[string]bool
	noRetry := newTestClient(t, server, nil)
	if err := noRetry.Get(context.Background(), server.URL, &v); err == nil {
		t.Fatal("expected failure without retries")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls without retries = %d, want 1", calls.Load())
	}

	retrying := newTestClient(t, server, nil).WithRetries(2)
	if err := retrying.Get(context.Background(), server.URL, &v); err != nil {
		t.Fatalf("Get() with retries error: %v", err)
	}
	if !v["ok"] || calls.Load() != 3 {
		t.Errorf("calls = %d, v = %v", calls.Load(), v)
	}
}

func TestClientWritesNeverRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server, nil).WithRetries(5)
	err := client.SendJSON(context.Background(), http.MethodPost, server.URL, map[string]string{"a": "b"}, nil)
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("SendJSON() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("POST attempted %d times, want 1", calls.Load())
	}
}

func TestClientSendJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"echo": in["person1"]})
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	var out map[string]string
	if err := client.SendJSON(context.Background(), http.MethodPost, server.URL, map[string]string{"person1": "p"}, &out); err != nil {
		t.Fatalf("SendJSON() error: %v", err)
	}
	if out["echo"] != "p" {
		t.Errorf("echo = %q", out["echo"])
	}
}

func TestClientDeleteNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := newTestClient(t, server, nil).Delete(context.Background(), server.URL); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "test", time.Hour, nil)
	ctx := context.Background()

	fetchCount := 0
	type person struct {
		Name string `json:"name"`
	}
	fetch := func(v *person) func() error {
		return func() error {
			fetchCount++
			v.Name = "fetched"
			return nil
		}
	}

	var first person
	if err := client.Cached(ctx, "persons/1", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second person
	if err := client.Cached(ctx, "persons/1", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 || second.Name != "fetched" {
		t.Errorf("fetchCount = %d, second = %+v; want one fetch and a cache hit", fetchCount, second)
	}

	var third person
	_ = client.Cached(ctx, "persons/1", true, &third, fetch(&third))
	if fetchCount != 2 {
		t.Errorf("refresh should bypass cache, fetchCount = %d", fetchCount)
	}

	client.Invalidate(ctx, "persons/1")
	var fourth person
	_ = client.Cached(ctx, "persons/1", false, &fourth, fetch(&fourth))
	if fetchCount != 3 {
		t.Errorf("Invalidate should force a fetch, fetchCount = %d", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "test", time.Hour, nil)
	ctx := context.Background()

	var v string
	wantErr := &APIError{StatusCode: 500}
	if err := client.Cached(ctx, "k", false, &v, func() error { return wantErr }); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("Cached() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, cache.NewDefaultKeyer().HTTPKey("test", "k")); hit {
		t.Error("failed fetch should not be cached")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Method: "GET", URL: "http://x/persons/", StatusCode: 500, Body: "boom"}
	want := "API request failed: 500 Internal Server Error (GET http://x/persons/): boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
