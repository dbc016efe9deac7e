// Package cli implements the docsearch command-line interface.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cachefile "github.com/custodia-labs/docsearch-mcp/internal/adapters/driven/cache/file"
	configfile "github.com/custodia-labs/docsearch-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsearch-mcp/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch-mcp/internal/core/services"
	"github.com/custodia-labs/docsearch-mcp/internal/logger"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docsearch",
	Short: "Semantic search over indexed documentation",
	Long: `docsearch indexes a configured set of HTML documentation pages into
embedded text chunks and serves nearest-neighbour search over them,
either directly on the command line or as an MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.docsearch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig resolves the config path and loads the configuration.
func loadConfig() (*configfile.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = configfile.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
	}
	return configfile.Load(path)
}

// newCacheStore builds the cache store from configuration.
func newCacheStore(cfg *configfile.Config) (*cachefile.Store, error) {
	return cachefile.NewStore(cfg.CachePath)
}

// newEmbedder builds the OpenAI embedding adapter from configuration.
func newEmbedder(cfg *configfile.Config) (driven.EmbeddingService, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	return openai.NewEmbeddingService(openai.Config{
		APIKey:  key,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
		Timeout: 60 * time.Second,
	})
}

// newEmbedService builds the batcher over the embedding adapter.
func newEmbedService(cfg *configfile.Config, embedder driven.EmbeddingService) *services.EmbedService {
	return services.NewEmbedService(embedder, services.EmbedConfig{
		MaxBatchItems:  cfg.Batching.MaxItems,
		MaxBatchTokens: cfg.Batching.MaxTokens,
		MaxItemTokens:  cfg.Batching.MaxItemTokens,
		MaxRetries:     cfg.Batching.MaxRetries,
		Pacing:         cfg.Pacing(),
	})
}
