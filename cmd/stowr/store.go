package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store <path>...",
		Short: "Ingest one or more files into the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			for _, path := range args {
				e, err := mgr.Store(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("storing %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", e.ID, e.Kind(), e.OriginalPath)
			}
			return nil
		},
	}
	return cmd
}
