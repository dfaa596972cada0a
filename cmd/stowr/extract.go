package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "extract <id>",
		Short: "Reconstruct a stored entry's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			id := args[0]
			if out != "" {
				return mgr.ExtractTo(cmd.Context(), id, out)
			}
			content, err := mgr.Extract(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", id, err)
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the reconstructed content to this path instead of stdout")
	return cmd
}

func newExtractAllCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract-all <dest-dir>",
		Short: "Reconstruct every tracked entry under dest-dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			succeeded, failed, err := mgr.ExtractAll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d, failed %d\n", succeeded, failed)
			return nil
		},
	}
	return cmd
}
