package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/docsearch-mcp/internal/core/services"
)

var (
	searchTopK     int
	searchMinScore float64
	searchJSON     bool
)

// Result rendering styles.
var (
	pageStyle   = lipgloss.NewStyle().Bold(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sourceStyle = lipgloss.NewStyle().Faint(true)
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed documentation",
	Long: `Embeds the query and ranks every cached chunk by cosine similarity,
returning the top matches above the minimum score.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 10, "maximum number of results (1-50)")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0.1, "minimum similarity score (0-1)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchTopK < 1 || searchTopK > 50 {
		return fmt.Errorf("--top-k must be between 1 and 50")
	}
	if searchMinScore < 0 || searchMinScore > 1 {
		return fmt.Errorf("--min-score must be between 0 and 1")
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

	engine := services.NewSearchEngine(store)
	if err := engine.Load(cmd.Context()); err != nil {
		return fmt.Errorf("%w (run 'docsearch index' first)", err)
	}
	svc := services.NewSearchService(engine, embedder)

	results, err := svc.Search(cmd.Context(), args[0], driving.SearchOptions{
		TopK:     searchTopK,
		MinScore: searchMinScore,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i := range results {
		r := &results[i]
		cmd.Printf("%d. %s %s\n",
			i+1,
			pageStyle.Render(r.Chunk.PageName),
			scoreStyle.Render(fmt.Sprintf("(%.3f)", r.Score)))
		cmd.Printf("   %s\n", sourceStyle.Render(r.Chunk.Href))
		cmd.Printf("   %s\n\n", r.Chunk.FullContent)
	}
	return nil
}
