package netcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Cache provides a simple persistent HTTP cache with ETag/Last-Modified support.
type Cache struct {
	Dir    string
	Client *http.Client
	// Attempts is the number of full fetches tried before giving up.
	Attempts int
	// Backoff is the delay before the second attempt; it doubles after each failure.
	Backoff time.Duration
}

// New returns a new Cache with a reasonable default HTTP client.
func New(dir string) *Cache {
	return &Cache{
		Dir:      dir,
		Client:   &http.Client{Timeout: 30 * time.Second},
		Attempts: 3,
		Backoff:  time.Second,
	}
}

// StatusError is returned for a response outside the 2xx range.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// retryable reports whether a later attempt may succeed: transport failures
// and server errors are, client errors are not.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return true
}

type meta struct {
	URL          string `json:"url"`
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	// DataFile is the basename of the cached payload file
	DataFile string `json:"data_file"`
}

// Get returns the body at url, revalidating a cached copy when one exists.
// Returns (body, fromCache, error).
func (c *Cache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	key := hash(url)
	mpath := filepath.Join(c.Dir, key+".json")
	dpath := filepath.Join(c.Dir, key+".data")

	var m meta
	haveMeta := false
	if b, err := os.ReadFile(mpath); err == nil {
		if json.Unmarshal(b, &m) == nil && m.URL == url && fileExists(filepath.Join(c.Dir, m.DataFile)) {
			haveMeta = true
		}
	}

	if haveMeta {
		body, fresh, err := c.revalidate(ctx, url, m, mpath, dpath)
		if err == nil {
			return body, !fresh, nil
		}
		if !retryable(err) || ctx.Err() != nil {
			return nil, false, err
		}
		// Server unreachable or failing; reuse the cached copy.
		slog.Debug("revalidation failed, using cached template", "url", url, "error", err)
		body, rerr := os.ReadFile(filepath.Join(c.Dir, m.DataFile))
		if rerr == nil {
			return body, true, nil
		}
	}

	attempts := max(c.Attempts, 1)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(c.Backoff << (attempt - 1)):
			}
		}
		body, err := c.fetch(ctx, url, nil, mpath, dpath)
		if err == nil {
			return body, false, nil
		}
		lastErr = err
		slog.Debug("fetch failed", "url", url, "attempt", attempt+1, "error", err)
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, false, lastErr
}

// revalidate issues a conditional GET. fresh reports whether a new body was
// downloaded.
func (c *Cache) revalidate(ctx context.Context, url string, m meta, mpath, dpath string) (body []byte, fresh bool, err error) {
	hdr := http.Header{}
	if m.ETag != "" {
		hdr.Set("If-None-Match", m.ETag)
	}
	if m.LastModified != "" {
		hdr.Set("If-Modified-Since", m.LastModified)
	}
	var notModified bool
	body, err = c.do(ctx, url, hdr, func(resp *http.Response) ([]byte, error) {
		if resp.StatusCode == http.StatusNotModified {
			notModified = true
			return os.ReadFile(filepath.Join(c.Dir, m.DataFile))
		}
		return c.store(resp, url, mpath, dpath)
	})
	return body, err == nil && !notModified, err
}

func (c *Cache) fetch(ctx context.Context, url string, hdr http.Header, mpath, dpath string) ([]byte, error) {
	return c.do(ctx, url, hdr, func(resp *http.Response) ([]byte, error) {
		return c.store(resp, url, mpath, dpath)
	})
}

func (c *Cache) do(ctx context.Context, url string, hdr http.Header, handle func(*http.Response) ([]byte, error)) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return handle(resp)
}

func (c *Cache) store(resp *http.Response, url, mpath, dpath string) ([]byte, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := writeFile(dpath, body); err != nil {
		return nil, err
	}
	nm := meta{
		URL:          url,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		DataFile:     filepath.Base(dpath),
	}
	b, err := json.MarshalIndent(nm, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeFile(mpath, b); err != nil {
		return nil, err
	}
	return body, nil
}

// writeFile writes through a temporary file so readers never see a partial payload.
func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
