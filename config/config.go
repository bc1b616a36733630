// Package config implements the layered configuration loader: an ordered list
// of JSON/YAML files is parsed and deep-merged, later files winning on
// scalars, and values are read through nested-key lookups with lookup-time
// environment substitution.
//
// A string value carrying the "env:" marker (for example "env:STORAGE_SECRET")
// is replaced by the named environment variable every time it is looked up,
// not once at load time, so consecutive lookups observe environment changes.
// Unset variables substitute as empty strings.
//
// Key lookup is case-insensitive.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/perigee-io/bucketsync/synctypes"
)

// EnvPrefix marks a string value for lookup-time environment substitution.
const EnvPrefix = "env:"

// DefaultStorageKey is the section RemoteStorage reads when no key is given.
const DefaultStorageKey = "remote_storage"

// Sentinel errors reported by the loader.
var (
	// ErrNoConfig indicates that none of the requested files could be read
	ErrNoConfig = errors.New("config: no configuration entries could be read")

	// ErrKeyNotSet indicates a missing or null value at the requested key path
	ErrKeyNotSet = errors.New("config: value not set")
)

// DefaultFiles returns the standard file list: a base configuration plus a
// local overlay. Either may be absent, but not both.
func DefaultFiles() []string {
	return []string{"config.json", "config_local.json"}
}

// Loader holds a merged configuration tree read from a set of files.
// A Loader is immutable after construction and safe for concurrent use;
// re-reading the files means constructing a new Loader (see Provider).
type Loader struct {
	dir      string
	files    []string
	settings map[string]any
}

// NewLoader reads the given configuration files, resolved against dir unless
// absolute, and merges them in order. Files that do not exist are skipped;
// at least one must load or NewLoader fails with ErrNoConfig. The file format
// is chosen by extension (.json, .yaml, .yml).
func NewLoader(dir string, files ...string) (*Loader, error) {
	if len(files) == 0 {
		files = DefaultFiles()
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("config: resolving directory %s: %w", dir, err)
	}

	merged := viper.New()
	loaded := 0
	for _, name := range files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(absDir, path)
		}
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".json", ".yaml", ".yml":
		default:
			return nil, fmt.Errorf("config: unsupported file suffix %q for %s", ext, path)
		}
		if _, err := os.Stat(path); err != nil {
			// Overlay files are optional; the loaded count catches the
			// nothing-found case below.
			continue
		}
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := merged.MergeConfigMap(v.AllSettings()); err != nil {
			return nil, fmt.Errorf("config: merging %s: %w", path, err)
		}
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("%w from %s (files: %s)", ErrNoConfig, absDir, strings.Join(files, ", "))
	}

	return &Loader{dir: absDir, files: files, settings: merged.AllSettings()}, nil
}

// Dir returns the directory relative paths resolve against.
func (l *Loader) Dir() string {
	return l.dir
}

// Settings returns the whole configuration tree with environment substitution
// applied. The result is a fresh copy on every call.
func (l *Loader) Settings() map[string]any {
	return substituteEnv(l.settings).(map[string]any)
}

// Get walks the nested key path and returns the value there, with environment
// substitution applied throughout. A missing or null value at any step fails
// with ErrKeyNotSet.
func (l *Loader) Get(keys ...string) (any, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("config: at least one key is required")
	}

	value := any(l.settings)
	for i, key := range keys {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, keyNotSet(keys[:i+1])
		}
		value, ok = m[strings.ToLower(key)]
		if !ok || value == nil {
			return nil, keyNotSet(keys[:i+1])
		}
	}
	return substituteEnv(value), nil
}

// GetString is Get for string values.
func (l *Loader) GetString(keys ...string) (string, error) {
	v, err := l.Get(keys...)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("config: value at %s is %T, not a string", strings.Join(keys, "."), v)
	}
	return s, nil
}

// ExistingPath reads a filesystem path from the configuration, resolves it
// against the loader directory when relative, and guarantees it exists: with
// create it is created as a directory tree, without it a missing path is an
// error. Returns the absolute path.
func (l *Loader) ExistingPath(create bool, keys ...string) (string, error) {
	s, err := l.GetString(keys...)
	if err != nil {
		return "", err
	}
	path := s
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}
	path = filepath.Clean(path)

	if create {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return "", fmt.Errorf("config: creating path %s: %w", path, err)
		}
		return path, nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("config: path %s from key %s: %w", path, strings.Join(keys, "."), err)
	}
	return path, nil
}

// Decode unmarshals the substituted subtree at the key path into out. With no
// keys the whole configuration tree is decoded.
func (l *Loader) Decode(out any, keys ...string) error {
	var raw any = l.Settings()
	if len(keys) > 0 {
		var err error
		raw, err = l.Get(keys...)
		if err != nil {
			return err
		}
	}
	if err := mapstructure.Decode(raw, out); err != nil {
		return fmt.Errorf("config: decoding %s: %w", strings.Join(keys, "."), err)
	}
	return nil
}

// RemoteStorage decodes and validates a storage connection configuration.
// With no keys the DefaultStorageKey section is read.
func (l *Loader) RemoteStorage(keys ...string) (synctypes.StorageConfig, error) {
	if len(keys) == 0 {
		keys = []string{DefaultStorageKey}
	}
	var cfg synctypes.StorageConfig
	if err := l.Decode(&cfg, keys...); err != nil {
		return synctypes.StorageConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return synctypes.StorageConfig{}, err
	}
	return cfg, nil
}

func keyNotSet(path []string) error {
	return fmt.Errorf("%w: %s", ErrKeyNotSet, strings.Join(path, "."))
}

// substituteEnv returns a copy of v with every "env:" marked string replaced
// by the named environment variable, recursing into maps and slices. The
// input is never mutated.
func substituteEnv(v any) any {
	switch val := v.(type) {
	case string:
		if name, ok := strings.CutPrefix(val, EnvPrefix); ok {
			return os.Getenv(name)
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = substituteEnv(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = substituteEnv(item)
		}
		return out
	default:
		return val
	}
}

// Provider caches a value built from a loaded configuration, so callers can
// share one parsed configuration without threading a Loader around. Get
// returns the cached value; Reload re-reads the files and rebuilds it.
type Provider[C any] struct {
	mu    sync.Mutex
	dir   string
	files []string
	build func(*Loader) (C, error)
	value C
	valid bool
}

// NewProvider creates a Provider that builds its value with build from a
// Loader over dir and files. Nothing is read until the first Get.
func NewProvider[C any](dir string, build func(*Loader) (C, error), files ...string) *Provider[C] {
	return &Provider[C]{dir: dir, files: files, build: build}
}

// Get returns the cached value, building it on first use.
func (p *Provider[C]) Get() (C, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.valid {
		return p.value, nil
	}
	return p.load()
}

// Reload discards the cache, re-reads the configuration files and rebuilds
// the value.
func (p *Provider[C]) Reload() (C, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load()
}

func (p *Provider[C]) load() (C, error) {
	var zero C
	loader, err := NewLoader(p.dir, p.files...)
	if err != nil {
		return zero, err
	}
	value, err := p.build(loader)
	if err != nil {
		return zero, err
	}
	p.value, p.valid = value, true
	return value, nil
}
