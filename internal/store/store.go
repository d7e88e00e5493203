package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/config"
)

// Synthetic fields for rows that only carry a URL and a label.
const (
	SeedModule          = "Database Record"
	SeedReason          = "Entry loaded from the threat_logs dataset."
	RuleKnownPhishing   = "KnownPhishing"
	RuleKnownLegitimate = "KnownLegitimate"

	seedPhishingConfidence   = 0.95
	seedLegitimateConfidence = 0.05
)

const (
	sqlSelectSeed  = `SELECT id, url, is_phishing FROM threat_logs ORDER BY RANDOM() LIMIT $1`
	sqlInsertLog   = `INSERT INTO threat_logs (url, is_phishing) VALUES ($1, $2) ON CONFLICT (url) DO NOTHING`
	sqlCountLogs   = `SELECT COUNT(*) FROM threat_logs`
	defaultBatchSz = 1000
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store reads and writes the labelled threat_logs dataset.
type Store struct {
	pool DBPool
	log  *zap.Logger
	now  func() time.Time
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
		now:  time.Now,
	}, nil
}

// Connect opens a pgx pool sized from the database configuration and pings it.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is not configured")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.HealthCheck > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheck
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// FetchSeedRecords returns up to limit random dataset rows as ThreatRecords.
// Every record is stamped with the same load instant.
func (s *Store) FetchSeedRecords(ctx context.Context, limit int) ([]schemas.ThreatRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("seed limit must be positive, got %d", limit)
	}
	rows, err := s.pool.Query(ctx, sqlSelectSeed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query threat logs: %w", err)
	}
	defer rows.Close()

	loadedAt := s.now().UTC()
	records := make([]schemas.ThreatRecord, 0, limit)
	for rows.Next() {
		var (
			id         int64
			url        string
			isPhishing bool
		)
		if err := rows.Scan(&id, &url, &isPhishing); err != nil {
			return nil, fmt.Errorf("failed to scan threat log row: %w", err)
		}
		records = append(records, seedRecord(strconv.FormatInt(id, 10), url, isPhishing, loadedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return records, nil
}

func seedRecord(id, url string, isPhishing bool, ts time.Time) schemas.ThreatRecord {
	confidence, rule := seedLegitimateConfidence, RuleKnownLegitimate
	if isPhishing {
		confidence, rule = seedPhishingConfidence, RuleKnownPhishing
	}
	return schemas.ThreatRecord{
		ID:              id,
		URL:             url,
		IsPhishing:      isPhishing,
		ConfidenceScore: confidence,
		AnalysisDetails: []schemas.Finding{{
			Module:         SeedModule,
			Reason:         SeedReason,
			TriggeredRules: []string{rule},
		}},
		VisualSimilarityScore: 0,
		Timestamp:             ts,
	}
}

// ImportStats summarizes one ImportThreatLogs run.
type ImportStats struct {
	Processed int   // rows sent to the database
	Inserted  int64 // rows actually added; the rest were duplicate URLs
}

// ImportThreatLogs inserts logs in transactions of batchSize rows, skipping
// URLs already present. A failing batch is rolled back and stops the import;
// batches committed before it stay committed.
func (s *Store) ImportThreatLogs(ctx context.Context, logs []schemas.ThreatLog, batchSize int) (ImportStats, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSz
	}
	var stats ImportStats
	for start := 0; start < len(logs); start += batchSize {
		end := min(start+batchSize, len(logs))
		inserted, err := s.importBatch(ctx, logs[start:end])
		if err != nil {
			return stats, fmt.Errorf("import rows %d-%d: %w", start+1, end, err)
		}
		stats.Processed = end
		stats.Inserted += inserted
		s.log.Info("Import progress",
			zap.Int("processed", stats.Processed),
			zap.Int("total", len(logs)),
			zap.Int64("inserted", stats.Inserted))
	}
	return stats, nil
}

func (s *Store) importBatch(ctx context.Context, logs []schemas.ThreatLog) (inserted int64, err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	batch := &pgx.Batch{}
	for _, l := range logs {
		batch.Queue(sqlInsertLog, l.URL, l.IsPhishing)
	}

	br := tx.SendBatch(ctx, batch)
	if br == nil {
		return 0, errors.New("failed to send batch: batch results is nil")
	}
	for i := range logs {
		tag, execErr := br.Exec()
		if execErr != nil {
			_ = br.Close()
			return 0, fmt.Errorf("failed to insert %q: %w", logs[i].URL, execErr)
		}
		inserted += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// CountThreatLogs returns the number of dataset rows.
func (s *Store) CountThreatLogs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, sqlCountLogs).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count threat logs: %w", err)
	}
	return n, nil
}
