// Package file loads docsearch configuration from a TOML file.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
)

// Defaults applied when the file leaves a field unset.
const (
	DefaultAPIKeyEnv   = "OPENAI_API_KEY"
	DefaultCacheFile   = "cache.json"
	defaultFetchSecs   = 30
	defaultPacingMilli = 200
)

// Config is the application configuration.
type Config struct {
	// BaseURL is the documentation root all page hrefs resolve against.
	BaseURL string `toml:"base_url"`

	// CachePath is the embedded-corpus cache file location.
	CachePath string `toml:"cache_path"`

	// SplitTokens is the chunk splitter's token budget.
	SplitTokens int `toml:"split_tokens"`

	// FetchTimeoutSeconds bounds a single page fetch.
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds"`

	// Pages is the fixed set of documentation pages to ingest.
	Pages []domain.Page `toml:"pages"`

	Embedding EmbeddingConfig `toml:"embedding"`
	Batching  BatchingConfig  `toml:"batching"`
}

// EmbeddingConfig configures the OpenAI-compatible embedding adapter.
type EmbeddingConfig struct {
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`

	// BaseURL overrides the OpenAI API base URL.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`
}

// BatchingConfig bounds the embedding batcher.
type BatchingConfig struct {
	MaxItems      int `toml:"max_items"`
	MaxTokens     int `toml:"max_tokens"`
	MaxItemTokens int `toml:"max_item_tokens"`
	MaxRetries    int `toml:"max_retries"`
	PacingMillis  int `toml:"pacing_ms"`
}

// FetchTimeout returns the page fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Pacing returns the minimum interval between embedding requests.
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.Batching.PacingMillis) * time.Millisecond
}

// DefaultDir returns the docsearch configuration directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".docsearch"), nil
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads and decodes the configuration file at path, applying
// defaults for unset fields. Field presence requirements (base URL, page
// list) are checked by the commands that need them.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.applyDefaults(filepath.Dir(path))
	return &cfg, nil
}

func (c *Config) applyDefaults(dir string) {
	if c.CachePath == "" {
		c.CachePath = filepath.Join(dir, DefaultCacheFile)
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = defaultFetchSecs
	}
	if c.Embedding.APIKeyEnv == "" {
		c.Embedding.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.Batching.PacingMillis <= 0 {
		c.Batching.PacingMillis = defaultPacingMilli
	}
}

// APIKey resolves the embedding API key from the configured environment
// variable.
func (c *Config) APIKey() (string, error) {
	key := os.Getenv(c.Embedding.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("config: environment variable %s is not set", c.Embedding.APIKeyEnv)
	}
	return key, nil
}
