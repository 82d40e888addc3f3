package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lekesiz/netz-rag/internal/core/ports/driving"
)

var (
	addTitle  string
	addSource string
	addType   string
	addFile   string
)

var addCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add a document to the store",
	Long: `Embeds the given content and stores it for retrieval.
Content can be passed as an argument or read from a file with --file.
Adding identical content twice is a no-op and returns the same ID.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "document title")
	addCmd.Flags().StringVar(&addSource, "source", "", "where the document came from")
	addCmd.Flags().StringVar(&addType, "type", "", "document type (defaults to text)")
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "read content from file instead of argument")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	var content string
	switch {
	case addFile != "":
		data, err := os.ReadFile(addFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", addFile, err)
		}
		content = string(data)
	case len(args) == 1:
		content = args[0]
	default:
		return errors.New("provide content as an argument or via --file")
	}

	id, err := ragService.AddDocument(context.Background(), content, driving.AddOptions{
		Title:  addTitle,
		Source: addSource,
		Type:   addType,
	})
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}

	cmd.Printf("Added document %s\n", id)
	return nil
}
