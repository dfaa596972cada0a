package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaolin/stowr/internal/config"
)

func newConfigCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the store's configuration",
	}
	root.AddCommand(newConfigGetCommand(), newConfigSetCommand(), newConfigListCommand())
	return root
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a single configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storePath, _ := cmd.Flags().GetString("store")
			cfg, err := config.Load(storePath)
			if err != nil {
				return err
			}
			for _, kv := range cfg.List() {
				if kv[0] == args[0] {
					fmt.Fprintln(cmd.OutOrStdout(), kv[1])
					return nil
				}
			}
			return fmt.Errorf("unknown config key %q", args[0])
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a configuration value and persist it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			storePath, _ := cmd.Flags().GetString("store")
			cfg, err := config.Load(storePath)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			return config.Save(cfg)
		},
	}
}

func newConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration key and value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storePath, _ := cmd.Flags().GetString("store")
			cfg, err := config.Load(storePath)
			if err != nil {
				return err
			}
			for _, kv := range cfg.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", kv[0], kv[1])
			}
			return nil
		},
	}
}
