package main

import (
	"fmt"

	"github.com/moodgarden/verify-api/internal/application/sweeper"
	"github.com/moodgarden/verify-api/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired codes from the shared store once and exit",
	Long: `sweep runs a single pass over the configured redis or dynamo store.
The memory backend lives inside a serving process, so it cannot be swept from here.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if cfg.StoreBackend == config.BackendMemory {
			return fmt.Errorf("sweep needs a shared store, STORE_BACKEND is %q", cfg.StoreBackend)
		}
		store, closeStore, err := openStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		n, err := (&sweeper.Sweeper{Store: store, Logger: logger}).RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("sweep finished", zap.Int("removed", n))
		return nil
	},
}
