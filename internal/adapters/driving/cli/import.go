package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a knowledge base from a JSON file",
	Long: `Reads a JSON object of categories and flattens it into documents.
Each category maps to either an object of named entries or a list;
every leaf value becomes one searchable document tagged with the
category as its type.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var kb map[string]any
	if err := json.Unmarshal(data, &kb); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	count, err := ragService.AddKnowledgeBase(context.Background(), kb)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d documents from %s\n", count, args[0])
	return nil
}
