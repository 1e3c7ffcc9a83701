package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/neurodesk/sweep/pkg/sweep"
	"github.com/neurodesk/sweep/pkg/validator"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "sweep.yaml"

// Config holds the settings of the sweep command.
type Config struct {
	// Target is the host language: php or starlark.
	Target string `yaml:"target" validate:"required,oneof=php starlark"`
	// Prelude prepends filter helper definitions to compiled output.
	Prelude bool `yaml:"prelude,omitempty"`
	// CacheDir stores templates fetched over HTTP.
	CacheDir string `yaml:"cache_dir,omitempty"`
	// OutputDir, if set, is joined to relative output paths.
	OutputDir string `yaml:"output_dir,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Target:   string(sweep.TargetPHP),
		CacheDir: defaultCacheDir(),
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".sweep-cache"
	}
	return filepath.Join(dir, "sweep")
}

// Load reads the config at path on top of the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// LoadFile is Load for a path the user named explicitly; the file must exist.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, optional bool) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if optional && errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validator.Struct(c)
}

// CompilerOptions converts the config to compiler options.
func (c *Config) CompilerOptions() sweep.Options {
	return sweep.Options{Target: sweep.Target(c.Target), Prelude: c.Prelude}
}
