package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	stats, err := ragService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Documents:  %d\n", stats.TotalDocuments)
	cmd.Printf("Queries:    %d\n", stats.TotalQueries)
	cmd.Printf("Backend:    %s\n", stats.Backend)
	cmd.Printf("Storage:    %s\n", stats.StorageLocation)

	if len(stats.DocumentTypes) > 0 {
		cmd.Println("Types:")
		types := make([]string, 0, len(stats.DocumentTypes))
		for t := range stats.DocumentTypes {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			cmd.Printf("  %-12s %d\n", t, stats.DocumentTypes[t])
		}
	}

	return nil
}
