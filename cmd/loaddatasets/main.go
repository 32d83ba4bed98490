package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/jarbas/internal/config"
	"github.com/dgallion1/jarbas/internal/logging"
	"github.com/dgallion1/jarbas/internal/pipeline"
	"github.com/dgallion1/jarbas/internal/store"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts pipeline.Options
	var envFile string

	cmd := &cobra.Command{
		Use:           "loaddatasets",
		Short:         "Load Serenata de Amor datasets into the database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			cfg := config.Load()
			if cmd.Flags().Changed("batch-size") {
				cfg.BatchSize = opts.BatchSize
			}
			log := logging.New(os.Stderr, cfg.LogLevel, false)
			if err := cfg.Validate(); err != nil {
				log.Error("invalid configuration", "error", err)
				return err
			}
			opts.BatchSize = cfg.BatchSize

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := store.Connect(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
			if err != nil {
				log.Error("database unavailable", "error", err)
				return err
			}
			defer pool.Close()

			orch := pipeline.NewOrchestrator(cfg, store.NewDocuments(pool), cmd.OutOrStdout(), log)
			if _, err := orch.Run(ctx, opts); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "loaddatasets:", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "source", "s", "",
		"Data directory of Serenata de Amor (datasets source)")
	cmd.Flags().BoolVarP(&opts.Drop, "drop-documents", "d", false,
		"Drop all existing documents before loading the dataset")
	cmd.Flags().IntVarP(&opts.BatchSize, "batch-size", "b", 10000,
		"Number of documents to be created at a time")
	cmd.Flags().StringVar(&envFile, "env-file", ".env",
		"Optional file of KEY=value settings")
	return cmd
}
