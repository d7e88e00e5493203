package classifier

import (
	"errors"
	"fmt"
	"math"
	"strings"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/llmutil"
)

// Pointer fields distinguish "absent" from the zero value; a type mismatch
// fails in the decoder itself.
type wireFinding struct {
	Module         *string   `json:"module"`
	Reason         *string   `json:"reason"`
	TriggeredRules *[]string `json:"triggeredRules"`
}

type wireVerdict struct {
	URL                     *string        `json:"url"`
	IsPhishing              *bool          `json:"isPhishing"`
	ConfidenceScore         *float64       `json:"confidenceScore"`
	AnalysisDetails         *[]wireFinding `json:"analysisDetails"`
	VisualSimilarityScore   *float64       `json:"visualSimilarityScore"`
	SuggestedLegitimateSite *string        `json:"suggestedLegitimateSite"`
}

// decodeVerdict strictly parses an oracle answer. The returned record carries
// no id or timestamp.
func decodeVerdict(answer string) (schemas.ThreatRecord, error) {
	raw, err := llmutil.ExtractJSONObject(answer)
	if err != nil {
		return schemas.ThreatRecord{}, err
	}

	var w wireVerdict
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return schemas.ThreatRecord{}, fmt.Errorf("invalid JSON payload: %w", err)
	}

	var missing []string
	if w.URL == nil {
		missing = append(missing, "url")
	}
	if w.IsPhishing == nil {
		missing = append(missing, "isPhishing")
	}
	if w.ConfidenceScore == nil {
		missing = append(missing, "confidenceScore")
	}
	if w.AnalysisDetails == nil {
		missing = append(missing, "analysisDetails")
	}
	if w.VisualSimilarityScore == nil {
		missing = append(missing, "visualSimilarityScore")
	}
	if len(missing) > 0 {
		return schemas.ThreatRecord{}, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	url := strings.TrimSpace(*w.URL)
	if url == "" {
		return schemas.ThreatRecord{}, errors.New("url is empty")
	}
	if !finite(*w.ConfidenceScore) || !finite(*w.VisualSimilarityScore) {
		return schemas.ThreatRecord{}, errors.New("scores must be finite numbers")
	}

	findings := make([]schemas.Finding, 0, len(*w.AnalysisDetails))
	for i, f := range *w.AnalysisDetails {
		switch {
		case f.Module == nil || strings.TrimSpace(*f.Module) == "":
			return schemas.ThreatRecord{}, fmt.Errorf("analysisDetails[%d]: module is required", i)
		case f.Reason == nil || strings.TrimSpace(*f.Reason) == "":
			return schemas.ThreatRecord{}, fmt.Errorf("analysisDetails[%d]: reason is required", i)
		case f.TriggeredRules == nil:
			return schemas.ThreatRecord{}, fmt.Errorf("analysisDetails[%d]: triggeredRules is required", i)
		}
		findings = append(findings, schemas.Finding{
			Module:         *f.Module,
			Reason:         *f.Reason,
			TriggeredRules: append([]string{}, (*f.TriggeredRules)...),
		})
	}

	rec := schemas.ThreatRecord{
		URL:                   url,
		IsPhishing:            *w.IsPhishing,
		ConfidenceScore:       schemas.ClampScore(*w.ConfidenceScore),
		AnalysisDetails:       findings,
		VisualSimilarityScore: schemas.ClampScore(*w.VisualSimilarityScore),
	}
	if w.SuggestedLegitimateSite != nil {
		rec.SuggestedLegitimateSite = strings.TrimSpace(*w.SuggestedLegitimateSite)
	}
	return rec, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// checkConfidenceConvention rejects a confidence that points the other way
// from the verdict.
func checkConfidenceConvention(rec schemas.ThreatRecord) error {
	if rec.IsPhishing && rec.ConfidenceScore < 0.5 {
		return fmt.Errorf("phishing verdict with confidence %.2f below 0.5", rec.ConfidenceScore)
	}
	if !rec.IsPhishing && rec.ConfidenceScore > 0.5 {
		return fmt.Errorf("safe verdict with confidence %.2f above 0.5", rec.ConfidenceScore)
	}
	return nil
}
