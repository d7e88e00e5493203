package explorer

import (
	"fmt"
	"time"

	"github.com/xkilldash9x/phishguard/api/schemas"
)

var fixtureNow = time.Date(2025, 10, 26, 12, 0, 0, 0, time.UTC)

func finding(rules ...string) schemas.Finding {
	return schemas.Finding{Module: "Heuristic Analysis", Reason: "test", TriggeredRules: rules}
}

// fixtureRecords mirrors the dashboard's sample history, newest first.
func fixtureRecords() []schemas.ThreatRecord {
	return []schemas.ThreatRecord{
		{
			ID: "1", URL: "http://login.microsft-online.com/auth", IsPhishing: true, ConfidenceScore: 0.98,
			AnalysisDetails: []schemas.Finding{finding("Typosquatting", "Keyword 'login'"), {Module: "Content Analysis", Reason: "form", TriggeredRules: []string{"External Form Action"}}},
			Timestamp:       fixtureNow.Add(-3 * time.Minute),
		},
		{
			ID: "2", URL: "http://bankofamerica-secure.com/update", IsPhishing: true, ConfidenceScore: 0.95,
			AnalysisDetails: []schemas.Finding{finding("Combosquatting", "Keyword 'secure'")},
			Timestamp:       fixtureNow.Add(-15 * time.Minute),
		},
		{
			ID: "3", URL: "https://react.dev", IsPhishing: false, ConfidenceScore: 0.01,
			AnalysisDetails: []schemas.Finding{finding("Safe List Match")},
			Timestamp:       fixtureNow.Add(-62 * time.Minute),
		},
		{
			ID: "4", URL: "http://gooogle.com/search?q=cute+cats", IsPhishing: true, ConfidenceScore: 0.85,
			AnalysisDetails: []schemas.Finding{finding("Homograph")},
			Timestamp:       fixtureNow.Add(-2 * time.Hour),
		},
		{
			ID: "5", URL: "http://tinyurl.com/dangerous-link", IsPhishing: true, ConfidenceScore: 0.78,
			AnalysisDetails: []schemas.Finding{finding("URL Shortener")},
			Timestamp:       fixtureNow.Add(-3 * time.Hour),
		},
		{
			ID: "6", URL: "https://github.com", IsPhishing: false, ConfidenceScore: 0.02,
			AnalysisDetails: []schemas.Finding{finding("Safe List Match")},
			Timestamp:       fixtureNow.Add(-5 * time.Hour),
		},
		{
			ID: "7", URL: "http://amazn-support.net/user/verify", IsPhishing: true, ConfidenceScore: 0.99,
			AnalysisDetails: []schemas.Finding{finding("Typosquatting", "Keyword 'verify'")},
			Timestamp:       fixtureNow.Add(-8 * time.Hour),
		},
	}
}

func ids(records []schemas.ThreatRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func generated(n int) []schemas.ThreatRecord {
	out := make([]schemas.ThreatRecord, n)
	for i := range out {
		out[i] = schemas.ThreatRecord{ID: fmt.Sprintf("r%03d", i), URL: fmt.Sprintf("http://example-site-%d.com", i)}
	}
	return out
}
