// Package source loads templates and writes compiled output.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/neurodesk/sweep/pkg/netcache"
)

// ErrNotFound is wrapped by loaders that look templates up by name.
var ErrNotFound = errors.New("template not found")

// IOError records a failed load or write.
type IOError struct {
	Op   string // "load" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

// Loader reads template source.
type Loader interface {
	Load(path string) (string, error)
}

// Sink receives compiled output.
type Sink interface {
	Write(path, content string) error
}

// Stdin is the path FileLoader reads from standard input.
const Stdin = "-"

// FileLoader reads templates from the file system.
type FileLoader struct {
	// Stdin is read for the path "-"; nil means os.Stdin.
	Stdin io.Reader
}

func (l FileLoader) Load(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == Stdin {
		r := l.Stdin
		if r == nil {
			r = os.Stdin
		}
		b, err = io.ReadAll(r)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", &IOError{Op: "load", Path: path, Err: err}
	}
	return string(b), nil
}

type MemoryLoader map[string]string

func (m MemoryLoader) Load(name string) (string, error) {
	if s, ok := m[name]; ok {
		return s, nil
	}
	return "", &IOError{Op: "load", Path: name, Err: ErrNotFound}
}

// URLLoader fetches http and https templates through a cache.
type URLLoader struct {
	Cache *netcache.Cache
	Ctx   context.Context
}

func (l URLLoader) Load(url string) (string, error) {
	ctx := l.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	b, _, err := l.Cache.Get(ctx, url)
	if err != nil {
		return "", &IOError{Op: "load", Path: url, Err: err}
	}
	return string(b), nil
}

// Auto sends URLs to URL and everything else to File.
type Auto struct {
	File Loader
	URL  Loader
}

func (a Auto) Load(path string) (string, error) {
	if IsURL(path) {
		if a.URL == nil {
			return "", &IOError{Op: "load", Path: path, Err: fmt.Errorf("no URL loader configured")}
		}
		return a.URL.Load(path)
	}
	return a.File.Load(path)
}

// IsURL reports whether path names an http or https resource.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// FileSink writes output files, creating parent directories.
type FileSink struct {
	// Dir, if set, is joined to relative paths.
	Dir string
}

func (s FileSink) Write(path, content string) error {
	if s.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.Dir, path)
	}
	if err := writeFile(path, content); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// WriterSink writes output to W and ignores the path.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Write(path, content string) error {
	if _, err := io.WriteString(s.W, content); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
