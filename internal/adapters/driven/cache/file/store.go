// Package file persists the embedded corpus as a JSON cache file.
//
// Writes go through a temp file in the same directory followed by a
// rename, so a reader never observes a partial write and a failed run
// never corrupts the previous good cache.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CacheStore = (*Store)(nil)

// Store is a file-based cache store.
type Store struct {
	path string
}

// NewStore creates a cache store at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("cache: path is required")
	}
	return &Store{path: path}, nil
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Save writes the cache atomically: temp file in the target directory,
// then rename.
func (s *Store) Save(_ context.Context, data domain.CacheData) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("cache: create directory: %w", err)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cache: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: rename: %w", err)
	}
	return nil
}

// Load reads and decodes the cache file. A missing file, malformed JSON,
// or a missing chunks field all wrap domain.ErrCacheUnavailable.
func (s *Store) Load(_ context.Context) (domain.CacheData, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return domain.CacheData{}, fmt.Errorf("cache %s: %w: %v", s.path, domain.ErrCacheUnavailable, err)
	}

	var data domain.CacheData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.CacheData{}, fmt.Errorf("cache %s: %w: %v", s.path, domain.ErrCacheUnavailable, err)
	}
	if data.Chunks == nil {
		return domain.CacheData{}, fmt.Errorf("cache %s: missing chunks: %w", s.path, domain.ErrCacheUnavailable)
	}
	return data, nil
}
