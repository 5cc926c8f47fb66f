package main

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/lawgpt-backend/internal/builder"
	"github.com/futig/lawgpt-backend/internal/ingest"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const runLongDesc string = `Load every PDF under the data directory, split pages into
overlapping chunks, embed them and store them in the passages table.

Files inside a directory named after a legal category are tagged
with that category and ranked higher for it at query time.

Examples:
  ingest run --data-dir ./LEGAL-DATA
  ingest run --data-dir ./LEGAL-DATA --reset --env prod`

type runCommander struct {
	dataDir   string
	env       string
	reset     bool
	batchSize int
}

func newRunCmd() *cobra.Command {
	cmder := &runCommander{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Index PDF documents",
		Long:  runLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.dataDir, "data-dir", "d", "./LEGAL-DATA", "Directory with PDF documents")
	cmd.Flags().StringVar(&cmder.env, "env", "local", "Environment to load configuration for")
	cmd.Flags().BoolVar(&cmder.reset, "reset", false, "Clear the index before loading")
	cmd.Flags().IntVar(&cmder.batchSize, "batch-size", ingest.DefaultBatchSize, "Passages per embedding request")

	return cmd
}

func (c *runCommander) run(ctx context.Context, cmd *cobra.Command) error {
	ingestor, err := builder.BuildIngestor(c.env, c.batchSize)
	if err != nil {
		return err
	}
	defer ingestor.Close()

	started := time.Now()
	logger := ingestor.Logger.With(zap.String("data_dir", c.dataDir))
	ctx = ctxzap.ToContext(ctx, logger)

	pages, files, err := ingestor.Loader.Load(ctx, c.dataDir)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no readable PDF pages found in %s", c.dataDir)
	}
	logger.Info("documents loaded", zap.Int("files", files), zap.Int("pages", len(pages)))

	stats, err := ingestor.Indexer.Index(ctx, pages, c.reset)
	if err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	total, err := ingestor.Count(ctx)
	if err != nil {
		logger.Warn("could not count passages", zap.Error(err))
	}

	logger.Info("ingestion completed",
		zap.Int("passages", stats.Passages),
		zap.Int("batches", stats.Batches),
		zap.Int64("index_size", total),
		zap.Duration("took", time.Since(started)),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d passages from %d files (%d pages)\n", stats.Passages, files, stats.Pages)
	return nil
}
