// File: internal/service/analyzer.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/classifier"
	"github.com/xkilldash9x/phishguard/internal/metrics"
	"github.com/xkilldash9x/phishguard/internal/records"
)

// Classifier obtains one verdict per call.
type Classifier interface {
	Classify(ctx context.Context, url string) (*schemas.ThreatRecord, error)
}

// Analyzer runs a classification and records the verdict. It never holds the
// history lock while the oracle is working.
type Analyzer struct {
	classifier Classifier
	history    *records.Store
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewAnalyzer wires a classifier to the history it feeds. m may be nil.
func NewAnalyzer(c Classifier, history *records.Store, m *metrics.Metrics, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		classifier: c,
		history:    history,
		metrics:    m,
		logger:     logger.Named("analyzer"),
	}
}

// Analyze classifies url and prepends the result to the history. On any
// failure, including a context that ended while the oracle was answering, the
// history is left unchanged.
func (a *Analyzer) Analyze(ctx context.Context, url string) (*schemas.ThreatRecord, error) {
	start := time.Now()
	rec, err := a.classifier.Classify(ctx, url)
	elapsed := time.Since(start)

	if err != nil {
		outcome := outcomeOf(ctx, err)
		a.observe(outcome, elapsed)
		a.logger.Warn("Classification failed",
			zap.String("url", url),
			zap.String("outcome", outcome),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return nil, err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		a.observe(metrics.OutcomeAbandoned, elapsed)
		a.logger.Info("Discarding verdict for abandoned request", zap.String("url", url), zap.Error(ctxErr))
		return nil, fmt.Errorf("request abandoned before the verdict was recorded: %w", ctxErr)
	}

	if err := a.history.Insert(*rec); err != nil {
		return nil, fmt.Errorf("failed to record verdict: %w", err)
	}
	a.observe(metrics.OutcomeSuccess, elapsed)
	if a.metrics != nil {
		a.metrics.SetRecords(a.history.Len())
	}

	a.logger.Info("URL classified",
		zap.String("id", rec.ID),
		zap.String("url", rec.URL),
		zap.Bool("is_phishing", rec.IsPhishing),
		zap.Float64("confidence", rec.ConfidenceScore),
		zap.Duration("duration", elapsed))
	return rec, nil
}

func (a *Analyzer) observe(outcome string, d time.Duration) {
	if a.metrics != nil {
		a.metrics.ObserveClassification(outcome, d)
	}
}

func outcomeOf(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, classifier.ErrEmptyURL):
		return metrics.OutcomeRejected
	case ctx.Err() != nil:
		return metrics.OutcomeAbandoned
	case errors.Is(err, classifier.ErrMalformedOracleResponse):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeUnavailable
	}
}
