package source

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neurodesk/sweep/pkg/netcache"
)

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.sweep")
	if err := os.WriteFile(path, []byte("Hi {{ name }}"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := FileLoader{}.Load(path)
	if err != nil || got != "Hi {{ name }}" {
		t.Fatalf("Load = %q, %v", got, err)
	}

	_, err = FileLoader{}.Load(filepath.Join(dir, "missing.sweep"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "load" {
		t.Fatalf("want load IOError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("IOError should unwrap to fs.ErrNotExist: %v", err)
	}
}

func TestFileLoaderStdin(t *testing.T) {
	got, err := FileLoader{Stdin: strings.NewReader("{{ x }}")}.Load(Stdin)
	if err != nil || got != "{{ x }}" {
		t.Fatalf("Load(-) = %q, %v", got, err)
	}
}

func TestMemoryLoader(t *testing.T) {
	m := MemoryLoader{"a": "A"}
	if got, err := m.Load("a"); err != nil || got != "A" {
		t.Fatalf("Load(a) = %q, %v", got, err)
	}
	if _, err := m.Load("b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(b) error = %v, want ErrNotFound", err)
	}
}

func TestAutoLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote"))
	}))
	defer srv.Close()

	a := Auto{
		File: MemoryLoader{"local.sweep": "local"},
		URL:  URLLoader{Cache: netcache.New(t.TempDir())},
	}
	if got, err := a.Load("local.sweep"); err != nil || got != "local" {
		t.Fatalf("Load(local) = %q, %v", got, err)
	}
	if got, err := a.Load(srv.URL + "/t.sweep"); err != nil || got != "remote" {
		t.Fatalf("Load(url) = %q, %v", got, err)
	}

	if _, err := (Auto{File: MemoryLoader{}}).Load("https://example.invalid/x"); err == nil {
		t.Fatal("expected error without URL loader")
	}
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	s := FileSink{Dir: dir}
	if err := s.Write("out/page.php", "<?php echo $x; ?>"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "out", "page.php"))
	if err != nil || string(b) != "<?php echo $x; ?>" {
		t.Fatalf("file = %q, %v", b, err)
	}
}

func TestFileSinkError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	err := FileSink{}.Write(filepath.Join(blocker, "child.php"), "x")
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "write" {
		t.Fatalf("want write IOError, got %v", err)
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	if err := (WriterSink{W: &buf}).Write("ignored", "out"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "out" {
		t.Fatalf("buf = %q", buf.String())
	}
}
