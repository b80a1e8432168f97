package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohmanhakim/store-insights/internal/aggregator"
	"github.com/rohmanhakim/store-insights/internal/httpapi"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction API over HTTP.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		logger, err := metadata.NewLogger(cfg.LogLevel(), false)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck // stderr sync errors are not actionable

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		recorder := metadata.NewRecorderWithRunID(logger, "server")
		agg := aggregator.NewAggregator(cfg, recorder)

		var submitter httpapi.DocumentSubmitter
		if !cfg.DryRun() {
			sinks, closeSinks, sinkErr := openSinks(ctx, cfg, recorder)
			if sinkErr != nil {
				return sinkErr
			}
			defer closeSinks()

			dispatcher := storage.NewDispatcher(recorder, cfg.DispatchBuffer(), sinks...)
			defer func() {
				drainCtx, cancel := context.WithTimeout(context.Background(), storage.DefaultWriteTimeout)
				defer cancel()
				if closeErr := dispatcher.Close(drainCtx); closeErr != nil {
					logger.Warn("dispatcher did not drain", zap.Error(closeErr))
				}
			}()
			submitter = dispatcher
		}

		handler := httpapi.NewHandler(agg, submitter, cfg.MaxConcurrentRuns(), logger)
		router := httpapi.SetupRouter(handler, logger)
		return httpapi.Serve(ctx, cfg.ListenAddr(), router, logger)
	},
}
