package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "stowr",
		Short:   "Content-addressed local file store with deduplication and delta compression",
		Long:    `stowr stores files under a content-addressed, deduplicated, optionally delta-compressed local store, tracked in a pluggable index.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.PersistentFlags().String("store", ".", "path to the stowr store root")

	rootCmd.AddCommand(
		newStoreCommand(),
		newExtractCommand(),
		newExtractAllCommand(),
		newListCommand(),
		newSearchCommand(),
		newRenameCommand(),
		newMoveCommand(),
		newDeleteCommand(),
		newStoreBatchCommand(),
		newExtractBatchCommand(),
		newConfigCommand(),
		newServeMetricsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
