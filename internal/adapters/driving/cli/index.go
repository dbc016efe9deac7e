package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsearch-mcp/internal/adapters/driven/scrape"
	"github.com/custodia-labs/docsearch-mcp/internal/core/services"
	htmlseg "github.com/custodia-labs/docsearch-mcp/internal/normalisers/html"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Fetch, chunk, embed, and cache the configured documentation pages",
	Long: `Runs the full ingestion pipeline: every configured page is fetched
and segmented into heading-bounded chunks, oversized chunks are split to
the token budget, all chunks are embedded in token-budgeted batches, and
the result is written atomically to the cache file.

Pages that fail to fetch are skipped and reported; an embedding failure
aborts the run and leaves any previous cache intact.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.BaseURL == "" {
		return errors.New("config: base_url is required for indexing")
	}
	if len(cfg.Pages) == 0 {
		return errors.New("config: at least one [[pages]] entry is required for indexing")
	}

	scraper, err := scrape.New(cfg.BaseURL, cfg.FetchTimeout())
	if err != nil {
		return err
	}
	store, err := newCacheStore(cfg)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close() //nolint:errcheck

	indexer := services.NewIndexService(
		scraper,
		htmlseg.New(),
		newEmbedService(cfg, embedder),
		store,
		services.IndexConfig{Pages: cfg.Pages, SplitTokens: cfg.SplitTokens},
	)

	summary, err := indexer.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("ingestion run failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks from %d pages in %s\n",
		summary.Chunks, summary.Pages-len(summary.FailedPages), summary.Duration.Round(time.Millisecond))
	for _, href := range summary.FailedPages {
		cmd.Printf("  skipped %s (fetch failed)\n", href)
	}
	cmd.Printf("Cache written to %s\n", store.Path())
	return nil
}
