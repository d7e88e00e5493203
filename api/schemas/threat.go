package schemas

import (
	"math"
	"time"
)

// -- Threat Record Schemas --

// Labels produced by the type resolver when a record carries no usable rule.
const (
	TypeSafe    = "Safe"    // Resolved type of every record whose verdict is not phishing.
	TypeUnknown = "Unknown" // Resolved type of a phishing record with no triggered rule.
)

// Finding is one analysis module's contribution to a verdict. The order of the
// findings on a record is the order in which the modules were evaluated.
type Finding struct {
	Module         string   `json:"module"`         // Analysis technique, e.g. "Heuristic Analysis".
	Reason         string   `json:"reason"`         // Human readable explanation.
	TriggeredRules []string `json:"triggeredRules"` // Ordered rule identifiers, may be empty.
}

// ThreatRecord is one classification outcome. Records are immutable once
// created; a correction is modeled as a new record.
type ThreatRecord struct {
	ID                      string    `json:"id"`
	URL                     string    `json:"url"`
	IsPhishing              bool      `json:"isPhishing"`
	ConfidenceScore         float64   `json:"confidenceScore"`       // [0,1], confidence in the stated verdict.
	AnalysisDetails         []Finding `json:"analysisDetails"`       // Module evaluation order.
	VisualSimilarityScore   float64   `json:"visualSimilarityScore"` // [0,1], 0 means not computed.
	SuggestedLegitimateSite string    `json:"suggestedLegitimateSite,omitempty"`
	Timestamp               time.Time `json:"timestamp"`
}

// Clone returns a deep copy so callers cannot reach the slices held by a store.
func (r ThreatRecord) Clone() ThreatRecord {
	out := r
	if r.AnalysisDetails != nil {
		out.AnalysisDetails = make([]Finding, len(r.AnalysisDetails))
		for i, f := range r.AnalysisDetails {
			out.AnalysisDetails[i] = Finding{
				Module:         f.Module,
				Reason:         f.Reason,
				TriggeredRules: append([]string(nil), f.TriggeredRules...),
			}
		}
	}
	return out
}

// TriggeredRules flattens the rule identifiers of every finding, in order.
func (r ThreatRecord) TriggeredRules() []string {
	var rules []string
	for _, f := range r.AnalysisDetails {
		rules = append(rules, f.TriggeredRules...)
	}
	return rules
}

// Verdict is the display word for the record's boolean verdict.
func (r ThreatRecord) Verdict() string {
	if r.IsPhishing {
		return "Phishing"
	}
	return TypeSafe
}

// ClampScore pins a score into [0,1]. NaN collapses to 0.
func ClampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ThreatLog is one raw row of the labelled dataset: a URL and its ground truth.
type ThreatLog struct {
	URL        string `json:"url"`
	IsPhishing bool   `json:"isPhishing"`
}
