package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neurodesk/sweep/pkg/sweep"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != string(sweep.TargetPHP) {
		t.Errorf("Expected default target php, got %q", cfg.Target)
	}
	if cfg.Prelude {
		t.Error("Expected prelude off by default")
	}
}

func TestLoadFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := LoadFile(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("LoadFile(%s) error = %v, want not exist", path, err)
	}
	cfg, err := LoadFile(writeConfig(t, "target: starlark\n"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Target != "starlark" {
		t.Errorf("Expected starlark, got %q", cfg.Target)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != "php" {
		t.Errorf("Expected php, got %q", cfg.Target)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, "target: starlark\nprelude: true\ncache_dir: /tmp/c\noutput_dir: out\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != "starlark" || !cfg.Prelude || cfg.CacheDir != "/tmp/c" || cfg.OutputDir != "out" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	opts := cfg.CompilerOptions()
	if opts.Target != sweep.TargetStarlark || !opts.Prelude {
		t.Errorf("Unexpected options: %+v", opts)
	}
}

func TestLoadRejectsUnknownTarget(t *testing.T) {
	_, err := Load(writeConfig(t, "target: perl\n"))
	if err == nil {
		t.Fatal("Expected error for unknown target")
	}
	if !strings.Contains(err.Error(), "target must be one of [php starlark]") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	if _, err := Load(writeConfig(t, "targte: php\n")); err == nil {
		t.Fatal("Expected error for unknown field")
	}
}

func TestValidateEmptyTarget(t *testing.T) {
	cfg := Default()
	cfg.Target = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "target must not be empty") {
		t.Fatalf("Expected empty target error, got %v", err)
	}
}
