package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lekesiz/netz-rag/internal/core/domain"
)

var (
	searchLimit int
	searchType  string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored documents by similarity",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "only return documents of this type")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	results, err := ragService.Search(context.Background(), args[0], searchLimit, searchType)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		doc := results[i].Document

		title, _ := doc.Metadata["title"].(string)
		if title == "" {
			title = doc.ID[:12]
		}

		snippet := doc.Content
		if len(snippet) > 120 {
			snippet = snippet[:117] + "..."
		}

		cmd.Printf("  [%d] %s (%.3f)\n", i+1, title, results[i].Score)
		if docType := doc.Type(); docType != "" {
			cmd.Printf("      Type: %s\n", docType)
		}
		cmd.Printf("      %s\n", snippet)
		cmd.Println()
	}

	return nil
}
