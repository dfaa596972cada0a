package main

import "github.com/spf13/cobra"

func newRenameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename a tracked entry within its current directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return mgr.Rename(cmd.Context(), args[0], args[1])
		},
	}
	return cmd
}

func newMoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <id> <new-path>",
		Short: "Move a tracked entry to a new original path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return mgr.Move(cmd.Context(), args[0], args[1])
		},
	}
	return cmd
}

func newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a tracked entry and its physical object, ignoring any remaining references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return mgr.Delete(cmd.Context(), args[0])
		},
	}
	return cmd
}
