package explorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/xkilldash9x/phishguard/api/schemas"
)

// Validate rejects criteria that lie outside their documented domain. It does
// not clamp; a caller that sends min > max gets an error, not an empty result.
func Validate(c schemas.FilterCriteria) error {
	switch c.Status {
	case "", schemas.StatusAll, schemas.StatusPhishing, schemas.StatusSafe:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, c.Status)
	}

	r := c.Range()
	for _, bound := range []float64{r.Min, r.Max} {
		if math.IsNaN(bound) || bound < schemas.ConfidenceMin || bound > schemas.ConfidenceMax {
			return fmt.Errorf("%w: confidence bound %v outside [0,100]", ErrInvalidQuery, bound)
		}
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: confidence min %v greater than max %v", ErrInvalidQuery, r.Min, r.Max)
	}
	return nil
}

// Filter returns the order-preserving subsequence of records matching every
// predicate of c. Criteria are assumed valid; see Validate.
func Filter(records []schemas.ThreatRecord, c schemas.FilterCriteria) []schemas.ThreatRecord {
	m := newMatcher(c)
	out := make([]schemas.ThreatRecord, 0, len(records))
	for _, rec := range records {
		if m.match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Match reports whether a single record satisfies c.
func Match(rec schemas.ThreatRecord, c schemas.FilterCriteria) bool {
	return newMatcher(c).match(rec)
}

// matcher holds the case-folded and set-converted form of a criteria value so
// the per-record work in Filter stays a handful of comparisons.
type matcher struct {
	search string
	status schemas.StatusFilter
	types  map[string]struct{}
	lo, hi float64
}

func newMatcher(c schemas.FilterCriteria) matcher {
	m := matcher{
		search: strings.ToLower(c.SearchTerm),
		status: c.Status,
	}
	for _, t := range c.TypeFilter {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if m.types == nil {
			m.types = make(map[string]struct{}, len(c.TypeFilter))
		}
		m.types[t] = struct{}{}
	}
	r := c.Range()
	m.lo, m.hi = r.Min, r.Max
	return m
}

func (m matcher) match(rec schemas.ThreatRecord) bool {
	if m.search != "" && !strings.Contains(strings.ToLower(rec.URL), m.search) {
		return false
	}

	switch m.status {
	case schemas.StatusPhishing:
		if !rec.IsPhishing {
			return false
		}
	case schemas.StatusSafe:
		if rec.IsPhishing {
			return false
		}
	}

	if len(m.types) > 0 && !m.matchesType(rec) {
		return false
	}

	pct := Percent(rec.ConfidenceScore)
	return pct >= m.lo && pct <= m.hi
}

// Percent converts a [0,1] score to percentage units, rounded to a micro-percent
// so scores such as 0.57 compare equal to the bound 57.
func Percent(score float64) float64 {
	return math.Round(score*100*1e6) / 1e6
}

// matchesType is the union of the exact resolved-type test and the
// any-triggered-rule test. Either one passing keeps the record.
func (m matcher) matchesType(rec schemas.ThreatRecord) bool {
	if _, ok := m.types[ResolveType(rec)]; ok {
		return true
	}
	for _, f := range rec.AnalysisDetails {
		for _, rule := range f.TriggeredRules {
			if _, ok := m.types[rule]; ok {
				return true
			}
		}
	}
	return false
}
