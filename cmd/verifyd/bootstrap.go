package main

import (
	"fmt"

	"github.com/moodgarden/verify-api/internal/config"
	"github.com/moodgarden/verify-api/internal/infrastructure/dynamo"
	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the DynamoDB verification table and enable TTL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if cfg.StoreBackend != config.BackendDynamo {
			return fmt.Errorf("bootstrap only applies to the dynamo backend, STORE_BACKEND is %q", cfg.StoreBackend)
		}
		client, err := dynamo.NewClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return dynamo.Bootstrap(cmd.Context(), client, cfg.DynamoTable, logger)
	},
}
