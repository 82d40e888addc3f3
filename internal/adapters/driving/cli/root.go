// Package cli provides the command-line driving adapter. Commands
// receive their service via Execute rather than constructing it
// themselves, so tests can plug in fakes.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lekesiz/netz-rag/internal/core/ports/driving"
	"github.com/lekesiz/netz-rag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	ragService driving.RAGService
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "netz-rag",
	Short: "Local retrieval store with semantic search",
	Long: `netz-rag maintains a local document store with vector search.
Documents are embedded on ingest and retrieved by similarity,
optionally assembled into a token-bounded context block.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute wires the service into the command tree and runs it.
func Execute(svc driving.RAGService) error {
	ragService = svc
	return rootCmd.Execute()
}
