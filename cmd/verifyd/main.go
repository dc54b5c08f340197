package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/moodgarden/verify-api/internal/config"
	"github.com/moodgarden/verify-api/internal/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "verifyd",
	Short: "Mood Garden verification code service",
	Long: `verifyd issues, mails and redeems the six-digit codes used for e-mail
verification and password resets.

Run without a subcommand it behaves like "verifyd serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(bootstrapCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by every subcommand.
func setup() (*config.Config, *zap.Logger, error) {
	envErr := godotenv.Load(envFile)
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.IsDevelopment())
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	if envErr != nil {
		log.Debug("no .env file found, reading from environment", zap.String("path", envFile))
	}
	return cfg, log, nil
}
