package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsearch-mcp/internal/adapters/driving/mcp"
	"github.com/custodia-labs/docsearch-mcp/internal/core/services"
	"github.com/custodia-labs/docsearch-mcp/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing the searchDocs tool.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead.

The server watches the cache file and reloads the search engine when a
reindex replaces it, so a long-running server picks up fresh content
without a restart.

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "docsearch": {
        "command": "/path/to/docsearch",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	cfg, err := loadConfig()
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

	ctx := cmd.Context()
	engine := services.NewSearchEngine(store)
	// The server starts even without a cache: searches report the cache
	// as unavailable until an index run produces one and the watcher
	// triggers a load.
	if err := engine.Load(ctx); err != nil {
		logger.Warn("initial cache load failed: %v", err)
	}
	if err := store.Watch(ctx, func() {
		if err := engine.Load(ctx); err != nil {
			logger.Warn("cache reload failed: %v", err)
		}
	}); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search: services.NewSearchService(engine, embedder),
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}
