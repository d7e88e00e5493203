// File: internal/service/components.go
package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/classifier"
	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/llmclient"
	"github.com/xkilldash9x/phishguard/internal/metrics"
	"github.com/xkilldash9x/phishguard/internal/records"
	"github.com/xkilldash9x/phishguard/internal/store"
)

// Components holds the initialized services of one process. The history is
// constructed and seeded here, then only mutated through the Analyzer.
type Components struct {
	Config     config.Interface
	Metrics    *metrics.Metrics
	History    *records.Store
	LLM        schemas.LLMClient
	Classifier *classifier.Contract
	Analyzer   *Analyzer
	DBPool     *pgxpool.Pool

	logger     *zap.Logger
	seedSource records.SeedSource
}

// Option is a function that configures Components before initialization.
type Option func(*Components)

// WithLLMClient injects the oracle transport instead of building one from config.
func WithLLMClient(llm schemas.LLMClient) Option {
	return func(c *Components) { c.LLM = llm }
}

// WithSeedSource injects the seed reader instead of connecting to the database.
func WithSeedSource(src records.SeedSource) Option {
	return func(c *Components) { c.seedSource = src }
}

// NewComponents builds the pipeline. A seed failure is logged and leaves the
// history empty; the process keeps serving.
func NewComponents(ctx context.Context, cfg config.Interface, logger *zap.Logger, opts ...Option) (*Components, error) {
	c := &Components{
		Config:  cfg,
		Metrics: metrics.New(),
		History: records.New(logger),
		logger:  logger.Named("components"),
	}
	for _, opt := range opts {
		opt(c)
	}

	var initializationErr error
	defer func() {
		if initializationErr != nil {
			c.logger.Warn("Initialization failed, shutting down partially created components.", zap.Error(initializationErr))
			c.Shutdown()
		}
	}()

	if c.LLM == nil {
		llm, err := llmclient.NewClient(ctx, cfg.Oracle(), logger)
		if err != nil {
			initializationErr = fmt.Errorf("failed to initialize LLM client (hint: check PHISHGUARD_API_KEY): %w", err)
			return nil, initializationErr
		}
		c.LLM = llm
	}
	c.Classifier = classifier.New(c.LLM, cfg.Oracle(), logger)
	c.Analyzer = NewAnalyzer(c.Classifier, c.History, c.Metrics, logger)

	if cfg.Seed().Enabled {
		c.seed(ctx)
	}
	c.Metrics.SetRecords(c.History.Len())

	c.logger.Info("All components initialized successfully.", zap.Int("records", c.History.Len()))
	return c, nil
}

func (c *Components) seed(ctx context.Context) {
	seedCfg := c.Config.Seed()
	seedCtx := ctx
	if seedCfg.Timeout > 0 {
		var cancel context.CancelFunc
		seedCtx, cancel = context.WithTimeout(ctx, seedCfg.Timeout)
		defer cancel()
	}

	src := c.seedSource
	if src == nil {
		dbCfg := c.Config.Database()
		if dbCfg.URL == "" {
			c.logger.Info("No database configured; starting with an empty threat history.")
			return
		}
		pool, err := store.Connect(seedCtx, dbCfg)
		if err != nil {
			c.logger.Error("Failed to connect to the seed database; starting with an empty threat history.", zap.Error(err))
			return
		}
		c.DBPool = pool

		if dbCfg.MigrateOnStart {
			if err := store.Migrate(seedCtx, pool, c.logger); err != nil {
				c.logger.Error("Failed to migrate the seed database.", zap.Error(err))
				return
			}
		}

		s, err := store.New(seedCtx, pool, c.logger)
		if err != nil {
			c.logger.Error("Failed to initialize the seed store.", zap.Error(err))
			return
		}
		src = s
	}

	if _, err := c.History.LoadFrom(seedCtx, src, seedCfg.Limit); err != nil {
		c.logger.Error("Failed to load the threat history seed; starting empty.", zap.Error(err))
	}
}

// Shutdown releases the oracle client and the database pool.
func (c *Components) Shutdown() {
	if c.LLM != nil {
		if err := c.LLM.Close(); err != nil {
			c.logger.Warn("Error closing LLM client.", zap.Error(err))
		}
	}
	if c.DBPool != nil {
		c.DBPool.Close()
		c.logger.Debug("Database connection pool closed.")
	}
	c.logger.Debug("All components shut down.")
}
