package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohmanhakim/store-insights/internal/aggregator"
	"github.com/rohmanhakim/store-insights/internal/config"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract <website-url>",
	Short: "Extract insights from one storefront and print the document as JSON.",
	Args:  cobra.ExactArgs(1),
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

		return RunExtract(ctx, cfg, logger, args[0], cmd.OutOrStdout())
	},
}

// RunExtract runs one extraction, writes the document to out and persists
// it through the configured sinks unless the config is a dry run.
func RunExtract(ctx context.Context, cfg config.Config, logger *zap.Logger, rawURL string, out io.Writer) error {
	recorder := metadata.NewRecorder(logger)
	agg := aggregator.NewAggregator(cfg, recorder)

	doc, err := agg.ExtractInsights(ctx, rawURL)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if cfg.DryRun() {
		return nil
	}

	sinks, closeSinks, err := openSinks(ctx, cfg, recorder)
	if err != nil {
		return err
	}
	defer closeSinks()

	for _, sink := range sinks {
		result, writeErr := sink.Write(ctx, doc)
		if writeErr != nil {
			return writeErr
		}
		logger.Info("document persisted",
			zap.String("domain", doc.Domain),
			zap.String("location", result.Location()),
		)
	}
	return nil
}

// openSinks builds the local sink when an output directory is configured
// and the Postgres sink when a DSN is configured.
func openSinks(ctx context.Context, cfg config.Config, recorder *metadata.Recorder) ([]storage.Sink, func(), error) {
	var sinks []storage.Sink
	closeFn := func() {}

	if cfg.OutputDir() != "" {
		sinks = append(sinks, storage.NewLocalSink(recorder, cfg.OutputDir()))
	}

	if cfg.DatabaseDSN() != "" {
		db, err := storage.NewPostgresConnection(cfg.DatabaseDSN())
		if err != nil {
			return nil, closeFn, err
		}
		pg := storage.NewPostgresSink(db, recorder)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, closeFn, err
		}
		sinks = append(sinks, pg)
		closeFn = func() { db.Close() }
	}
	return sinks, closeFn, nil
}
