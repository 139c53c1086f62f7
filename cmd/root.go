package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconciler",
		Short: "Bibliographic metadata reconciliation tool",
		Long: `Reconciler merges duplicate and near-duplicate book metadata records.

It normalizes records from multiple sources, clusters them by ISBN family
using fuzzy field similarity, and merges each cluster into a single
canonical record with field-level provenance.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
