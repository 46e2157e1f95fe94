package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/harentsoaR/medicore-api/internal/config"
	"github.com/harentsoaR/medicore-api/internal/logging"
	"github.com/harentsoaR/medicore-api/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "medicore-api",
		Short:        "Hospital management REST API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedAdminCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// env is the configuration, logger and database every command starts from.
type env struct {
	cfg *config.Config
	log *logrus.Logger
	db  *store.DB
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFmt)

	db, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	log.WithField("database", cfg.MongoDatabase).Info("Connected to MongoDB")

	if err := db.EnsureIndexes(ctx); err != nil {
		_ = db.Close(context.Background())
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}
