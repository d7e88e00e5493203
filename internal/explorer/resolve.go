// Package explorer holds the pure query functions behind the threat explorer and
// dashboard: type resolution, filtering, pagination and aggregation. Nothing in
// here caches or stores derived values; every call recomputes from the records.
package explorer

import (
	"errors"

	"github.com/xkilldash9x/phishguard/api/schemas"
)

// ErrInvalidQuery is returned for criteria or page requests outside their domain.
var ErrInvalidQuery = errors.New("invalid query")

// ResolveType derives the single display label of a record from its findings.
func ResolveType(rec schemas.ThreatRecord) string {
	if !rec.IsPhishing {
		return schemas.TypeSafe
	}
	if len(rec.AnalysisDetails) == 0 || len(rec.AnalysisDetails[0].TriggeredRules) == 0 {
		return schemas.TypeUnknown
	}
	return rec.AnalysisDetails[0].TriggeredRules[0]
}
