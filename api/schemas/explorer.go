package schemas

import (
	"fmt"
	"strings"
	"time"
)

// -- Explorer Query Schemas --

// StatusFilter restricts a query to one verdict. The empty value behaves as StatusAll.
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusPhishing StatusFilter = "phishing"
	StatusSafe     StatusFilter = "safe"
)

// ParseStatusFilter maps the explorer's wire words (case-insensitive) onto a StatusFilter.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusPhishing:
		return StatusPhishing, nil
	case StatusSafe:
		return StatusSafe, nil
	default:
		return "", fmt.Errorf("unknown status filter %q (expected all, phishing or safe)", s)
	}
}

// Confidence range bounds, in percentage units.
const (
	ConfidenceMin = 0.0
	ConfidenceMax = 100.0
)

// ConfidenceRange is an inclusive window over confidenceScore*100.
type ConfidenceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterCriteria is an ephemeral explorer query. Its zero value matches every record.
type FilterCriteria struct {
	SearchTerm string       `json:"searchTerm,omitempty"`
	Status     StatusFilter `json:"status,omitempty"`
	TypeFilter []string     `json:"typeFilter,omitempty"`
	// Confidence is nil when the caller did not restrict it, which means [0,100].
	Confidence *ConfidenceRange `json:"confidenceRange,omitempty"`
}

// DefaultCriteria returns the explicit all-default query.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Status:     StatusAll,
		Confidence: &ConfidenceRange{Min: ConfidenceMin, Max: ConfidenceMax},
	}
}

// Range resolves the effective confidence window.
func (c FilterCriteria) Range() ConfidenceRange {
	if c.Confidence == nil {
		return ConfidenceRange{Min: ConfidenceMin, Max: ConfidenceMax}
	}
	return *c.Confidence
}

// PageResult is one page of an ordered sequence.
type PageResult struct {
	Items      []ThreatRecord `json:"items"`
	TotalCount int            `json:"totalCount"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	StartIndex int            `json:"startIndex"` // 0-based, inclusive.
	EndIndex   int            `json:"endIndex"`   // 0-based, exclusive; clipped to TotalCount.
	StartItem  int            `json:"startItem"`  // 1-based, for "Showing X to Y of Z".
	EndItem    int            `json:"endItem"`
}

// ShowControls reports whether a view should render pagination controls at all.
// StartItem and EndItem carry no meaning when it returns false.
func (p PageResult) ShowControls() bool { return p.TotalPages > 1 }

// -- Aggregation Schemas --

// TypeCount is one bar of the per-type distribution chart.
type TypeCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TimeBucket is a half-open window [Start, End) supplied by the caller.
type TimeBucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts falls inside the bucket.
func (b TimeBucket) Contains(ts time.Time) bool {
	return !ts.Before(b.Start) && ts.Before(b.End)
}

// BucketCount is one point of the threats-over-time chart.
type BucketCount struct {
	Label string `json:"name"`
	Value int    `json:"value"`
}

// Summary holds the headline counts of a record sequence.
type Summary struct {
	Total    int `json:"total"`
	Phishing int `json:"phishing"`
	Safe     int `json:"safe"`
}
