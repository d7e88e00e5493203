// Package records holds the in-memory threat history that backs the explorer
// and dashboard views.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/explorer"
)

// ErrInvalidRecord is returned by Insert for records that are not well formed.
var ErrInvalidRecord = errors.New("invalid threat record")

// SeedSource is the persisted store that provides the historical records
// loaded at startup.
type SeedSource interface {
	FetchSeedRecords(ctx context.Context, limit int) ([]schemas.ThreatRecord, error)
}

// Store is the ordered record history, newest first. Records are kept
// oldest-first internally so that prepending is an append; every reader sees
// the reversed order. Insert holds the write lock, so a reader never observes
// a partial insert.
type Store struct {
	mu      sync.RWMutex
	records []schemas.ThreatRecord // oldest first
	ids     map[string]struct{}
	log     *zap.Logger
}

// New creates an empty store.
func New(logger *zap.Logger) *Store {
	return &Store{
		ids: make(map[string]struct{}),
		log: logger.Named("records"),
	}
}

// Seed bulk loads records given newest first, as a seed source returns them.
// Malformed records and ids already present are skipped; for an id repeated
// within recs the newest occurrence wins. It returns the number loaded.
func (s *Store) Seed(recs ...schemas.ThreatRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	accepted := make([]schemas.ThreatRecord, 0, len(recs))
	for _, rec := range recs {
		if err := s.check(rec); err != nil {
			s.log.Debug("Skipping seed record", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		s.ids[rec.ID] = struct{}{}
		accepted = append(accepted, rec)
	}
	for i := len(accepted) - 1; i >= 0; i-- {
		s.records = append(s.records, accepted[i].Clone())
	}
	return len(accepted)
}

// LoadFrom seeds the store from src. A failing source leaves the store untouched.
func (s *Store) LoadFrom(ctx context.Context, src SeedSource, limit int) (int, error) {
	recs, err := src.FetchSeedRecords(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch seed records: %w", err)
	}
	n := s.Seed(recs...)
	s.log.Info("Seeded threat history", zap.Int("fetched", len(recs)), zap.Int("loaded", n))
	return n, nil
}

// Insert puts rec at the front of the history. Only malformed records (empty
// id or url, duplicate id) are rejected; the same url may appear many times.
func (s *Store) Insert(rec schemas.ThreatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admit(rec)
}

func (s *Store) admit(rec schemas.ThreatRecord) error {
	if err := s.check(rec); err != nil {
		return err
	}
	s.ids[rec.ID] = struct{}{}
	s.records = append(s.records, rec.Clone())
	return nil
}

func (s *Store) check(rec schemas.ThreatRecord) error {
	switch {
	case rec.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	case strings.TrimSpace(rec.URL) == "":
		return fmt.Errorf("%w: empty url", ErrInvalidRecord)
	}
	if _, dup := s.ids[rec.ID]; dup {
		return fmt.Errorf("%w: duplicate id %q", ErrInvalidRecord, rec.ID)
	}
	return nil
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a copy of the full history, newest first.
func (s *Store) All() []schemas.ThreatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// snapshot must be called with the read lock held.
func (s *Store) snapshot() []schemas.ThreatRecord {
	out := make([]schemas.ThreatRecord, len(s.records))
	for i, rec := range s.records {
		out[len(s.records)-1-i] = rec.Clone()
	}
	return out
}

// Get looks up a record by id.
func (s *Store) Get(id string) (schemas.ThreatRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ids[id]; !ok {
		return schemas.ThreatRecord{}, false
	}
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].ID == id {
			return s.records[i].Clone(), true
		}
	}
	return schemas.ThreatRecord{}, false
}

// Query filters the history with c and returns one page of the result. The
// page's TotalCount is the size of the filtered sequence.
func (s *Store) Query(c schemas.FilterCriteria, page, pageSize int) (schemas.PageResult, error) {
	if err := explorer.Validate(c); err != nil {
		return schemas.PageResult{}, err
	}
	return explorer.Paginate(explorer.Filter(s.All(), c), page, pageSize)
}

// AggregateByType counts the current history per resolved type.
func (s *Store) AggregateByType() []schemas.TypeCount {
	return explorer.AggregateByType(s.All())
}

// AggregateByTimeBucket counts the current history per caller supplied bucket.
func (s *Store) AggregateByTimeBucket(buckets []schemas.TimeBucket) ([]schemas.BucketCount, error) {
	return explorer.AggregateByTimeBucket(s.All(), buckets)
}

// Summary returns the headline verdict counts of the current history.
func (s *Store) Summary() schemas.Summary {
	return explorer.Summarize(s.All())
}
