package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/dataset"
	"github.com/xkilldash9x/phishguard/internal/observability"
	"github.com/xkilldash9x/phishguard/internal/store"
)

// threatLogImporter is the slice of *store.Store the import command needs.
type threatLogImporter interface {
	ImportThreatLogs(ctx context.Context, logs []schemas.ThreatLog, batchSize int) (store.ImportStats, error)
	CountThreatLogs(ctx context.Context) (int64, error)
}

// connectDatabase opens the pool used by import and migrate. Tests replace it.
var connectDatabase = func(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	return store.Connect(ctx, cfg)
}

func newImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import <dataset.csv>",
		Short: "Load a labelled URL dataset into the threat_logs table",
		Long: `Reads a CSV file with a CLASS_LABEL column (1 means phishing) and an optional
url column. Rows without a URL get a synthetic one. URLs already present in the
table are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			logs, err := dataset.ReadFile(args[0])
			if err != nil {
				return err
			}
			logger.Info("Dataset loaded", zap.String("path", args[0]), zap.Int("rows", len(logs)))

			dbCfg := cfg.Database()
			pool, err := connectDatabase(ctx, dbCfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if dbCfg.MigrateOnStart {
				if err := store.Migrate(ctx, pool, logger); err != nil {
					return err
				}
			}
			s, err := store.New(ctx, pool, logger)
			if err != nil {
				return err
			}
			return runImport(ctx, logger, s, logs, dbCfg.ImportBatchSize, cmd.OutOrStdout())
		},
	}

	importCmd.Flags().Bool("migrate", false, "apply pending schema migrations first")
	annotateFlag(importCmd.Flags(), "migrate", "database.migrate_on_start")
	importCmd.Flags().Int("batch-size", 0, "rows per transaction (overrides database.import_batch_size)")
	annotateFlag(importCmd.Flags(), "batch-size", "database.import_batch_size")
	return importCmd
}

func runImport(ctx context.Context, logger *zap.Logger, imp threatLogImporter, logs []schemas.ThreatLog, batchSize int, out io.Writer) error {
	stats, err := imp.ImportThreatLogs(ctx, logs, batchSize)
	if err != nil {
		logger.Error("Import stopped", zap.Int("committed_rows", stats.Processed), zap.Error(err))
		return fmt.Errorf("failed to import dataset: %w", err)
	}

	total, err := imp.CountThreatLogs(ctx)
	if err != nil {
		return err
	}
	logger.Info("Import complete",
		zap.Int("processed", stats.Processed),
		zap.Int64("inserted", stats.Inserted),
		zap.Int64("table_rows", total))

	_, err = fmt.Fprintf(out, "Imported %d of %d rows (%d duplicates skipped); threat_logs now holds %d rows.\n",
		stats.Inserted, stats.Processed, int64(stats.Processed)-stats.Inserted, total)
	return err
}
