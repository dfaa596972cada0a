package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xiaolin/stowr/internal/storagemanager"
)

func newStoreBatchCommand() *cobra.Command {
	var listFile string
	cmd := &cobra.Command{
		Use:   "store-batch <root-dir>",
		Short: "Ingest every file under root-dir matching a list file's include/exclude globs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			root := args[0]
			var candidates []string
			err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() {
					candidates = append(candidates, path)
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("walking %s: %w", root, err)
			}

			paths := candidates
			if listFile != "" {
				paths, err = storagemanager.ParseListFile(listFile, candidates)
				if err != nil {
					return fmt.Errorf("parsing list file: %w", err)
				}
			}

			results := mgr.StoreBatch(cmd.Context(), paths)
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\tERROR\t%v\n", r.Path, r.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.Entry.ID, r.Entry.Kind(), r.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listFile, "list-file", "", "path to a list file of include (and !exclude) glob patterns")
	return cmd
}

func newExtractBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract-batch <dest-dir> <id>...",
		Short: "Extract multiple entries, one at a time in order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			destDir, ids := args[0], args[1:]
			results := mgr.ExtractBatch(cmd.Context(), ids, destDir)
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\tERROR\t%v\n", r.Path, r.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\textracted\n", r.Path)
			}
			return nil
		},
	}
	return cmd
}
