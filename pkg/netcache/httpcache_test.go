package netcache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestServer(body string, hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/page.sweep" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(body))
	}))
}

func TestCacheGetAndRevalidate(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer("Hello {{ name }}", &hits)
	defer srv.Close()

	c := New(t.TempDir())
	ctx := context.Background()

	body, cached, err := c.Get(ctx, srv.URL+"/page.sweep")
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if cached || string(body) != "Hello {{ name }}" {
		t.Fatalf("first Get = %q, cached=%v", body, cached)
	}

	body, cached, err = c.Get(ctx, srv.URL+"/page.sweep")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if !cached || string(body) != "Hello {{ name }}" {
		t.Fatalf("second Get = %q, cached=%v", body, cached)
	}
	if hits.Load() != 2 {
		t.Fatalf("server hits = %d, want 2", hits.Load())
	}
}

func TestCacheFallsBackWhenServerGone(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer("cached body", &hits)
	c := New(t.TempDir())
	c.Backoff = time.Millisecond
	url := srv.URL + "/page.sweep"

	if _, _, err := c.Get(context.Background(), url); err != nil {
		t.Fatalf("Get: %v", err)
	}
	srv.Close()

	body, cached, err := c.Get(context.Background(), url)
	if err != nil {
		t.Fatalf("Get after close: %v", err)
	}
	if !cached || string(body) != "cached body" {
		t.Fatalf("Get after close = %q, cached=%v", body, cached)
	}
}

func TestCacheHTTPError(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer("", &hits)
	defer srv.Close()

	c := New(t.TempDir())
	c.Attempts = 3
	c.Backoff = time.Millisecond
	_, _, err := c.Get(context.Background(), srv.URL+"/missing")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("err = %v, want HTTP 404", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1", hits.Load())
	}
}

func TestCacheRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(t.TempDir())
	c.Backoff = time.Millisecond
	body, _, err := c.Get(context.Background(), srv.URL+"/page.sweep")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" || hits.Load() != 3 {
		t.Fatalf("body = %q after %d hits", body, hits.Load())
	}
}

func TestCacheRevalidation(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    string
		wantErr bool
	}{
		{"gone", http.StatusGone, "", true},
		{"not found", http.StatusNotFound, "", true},
		{"server error", http.StatusInternalServerError, "v1 body", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var status atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if code := status.Load(); code != 0 {
					w.WriteHeader(int(code))
					return
				}
				w.Header().Set("ETag", `"v1"`)
				_, _ = w.Write([]byte("v1 body"))
			}))
			defer srv.Close()

			c := New(t.TempDir())
			c.Backoff = time.Millisecond
			url := srv.URL + "/page.sweep"
			if _, _, err := c.Get(context.Background(), url); err != nil {
				t.Fatalf("first Get: %v", err)
			}
			status.Store(int32(tt.status))

			body, cached, err := c.Get(context.Background(), url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Get = %q, want error", body)
				}
				return
			}
			if err != nil || !cached || string(body) != tt.want {
				t.Fatalf("Get = %q, cached=%v, err=%v", body, cached, err)
			}
		})
	}
}
