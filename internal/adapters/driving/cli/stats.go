package cli

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := newCacheStore(cfg)
	if err != nil {
		return err
	}

	data, err := store.Load(cmd.Context())
	if err != nil {
		cmd.Printf("Cache: %s\n", store.Path())
		cmd.Println("Loaded: false")
		return nil
	}

	dims := 0
	if len(data.Chunks) > 0 {
		dims = len(data.Chunks[0].Embedding)
	}
	cmd.Printf("Cache:      %s\n", store.Path())
	cmd.Printf("Version:    %s\n", data.Version)
	cmd.Printf("Indexed at: %s\n", data.Timestamp)
	cmd.Printf("Chunks:     %d\n", data.TotalChunks)
	cmd.Printf("Dimensions: %d\n", dims)
	return nil
}
