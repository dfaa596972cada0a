package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaolin/stowr/internal/config"
	"github.com/xiaolin/stowr/internal/index"
	"github.com/xiaolin/stowr/internal/logging"
	"github.com/xiaolin/stowr/internal/metrics"
	"github.com/xiaolin/stowr/internal/storagemanager"
)

// openManager loads the store rooted at the --store flag and constructs a
// ready-to-use storage manager over it, the shared setup every verb needs.
func openManager(ctx context.Context, cmd *cobra.Command) (*storagemanager.Manager, error) {
	storePath, err := cmd.Flags().GetString("store")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(storePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	idx, err := index.Open(ctx, storePath, cfg.IndexMode)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	log := logging.New(cfg.LoggingLevel, true)
	met := metrics.New()

	return storagemanager.New(cfg, idx, log, met)
}
