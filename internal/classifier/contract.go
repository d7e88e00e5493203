// Package classifier obtains a phishing verdict for a URL from the analysis
// oracle and turns its structured answer into a ThreatRecord.
package classifier

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/llmutil"
)

// Contract issues exactly one oracle call per Classify and never retries.
type Contract struct {
	llm         schemas.LLMClient
	temperature float64
	enforce     bool
	now         func() time.Time
	newID       func() string
	logger      *zap.Logger
}

// Option is a function that configures a Contract.
type Option func(*Contract)

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Contract) { c.now = now }
}

// WithIDGenerator replaces the record id source.
func WithIDGenerator(newID func() string) Option {
	return func(c *Contract) { c.newID = newID }
}

// New builds a Contract over llm using the oracle section of the configuration.
func New(llm schemas.LLMClient, cfg config.LLMModelConfig, logger *zap.Logger, opts ...Option) *Contract {
	c := &Contract{
		llm:         llm,
		temperature: float64(cfg.Temperature),
		enforce:     cfg.EnforceConfidenceConvention,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      logger.Named("classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify asks the oracle about url. Failures are *ClassificationError values
// matching ErrOracleUnavailable or ErrMalformedOracleResponse; a blank url
// returns ErrEmptyURL without calling the oracle.
func (c *Contract) Classify(ctx context.Context, url string) (*schemas.ThreatRecord, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrEmptyURL
	}

	answer, err := c.llm.Generate(ctx, schemas.GenerationRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt(url),
		Tier:         schemas.TierFast,
		Options: schemas.GenerationOptions{
			Temperature:     c.temperature,
			ForceJSONFormat: true,
			ResponseSchema:  ResponseSchema(),
		},
	})
	if err != nil {
		return nil, unavailable(url, err)
	}

	rec, err := decodeVerdict(answer)
	if err != nil {
		c.logger.Warn("Oracle answer rejected",
			zap.String("url", url),
			zap.Error(err),
			zap.String("answer", llmutil.Truncate(answer, 512)))
		return nil, malformed(url, err)
	}
	if c.enforce {
		if err := checkConfidenceConvention(rec); err != nil {
			c.logger.Warn("Oracle confidence contradicts verdict", zap.String("url", url), zap.Error(err))
			return nil, malformed(url, err)
		}
	}
	if rec.URL != url {
		c.logger.Debug("Oracle echoed a different url", zap.String("submitted", url), zap.String("echoed", rec.URL))
	}

	rec.ID = c.newID()
	rec.Timestamp = c.now().UTC()
	return &rec, nil
}
