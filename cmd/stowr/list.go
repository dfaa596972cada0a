package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every tracked entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			entries, err := mgr.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\n", e.ID, e.Kind(), e.OriginalPath, e.FileSize)
			}
			return nil
		},
	}
	return cmd
}

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "List entries whose original path matches a glob or substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			entries, err := mgr.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", e.ID, e.Kind(), e.OriginalPath)
			}
			return nil
		},
	}
	return cmd
}
