package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var contextMaxTokens int

var contextCmd = &cobra.Command{
	Use:   "context [query]",
	Short: "Build a context block for a query",
	Long: `Retrieves the most relevant snippets for the query and joins
them into a single block bounded by an estimated token budget,
suitable for pasting into an LLM prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().IntVar(&contextMaxTokens, "max-tokens", 500, "approximate token budget for the block")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	block, err := ragService.ContextForQuery(context.Background(), args[0], contextMaxTokens)
	if err != nil {
		return fmt.Errorf("context build failed: %w", err)
	}

	if block == "" {
		cmd.Println("No relevant context found.")
		return nil
	}

	cmd.Println(block)
	return nil
}
