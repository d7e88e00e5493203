package classifier

import (
	"fmt"

	"github.com/xkilldash9x/phishguard/api/schemas"
)

const systemPrompt = `Act as the 'PhishGuard' cybersecurity analysis system.

Perform a multi-layered analysis of the URL you are given:
1. Heuristic Analysis: check for typosquatting, combosquatting, homoglyphs, suspicious keywords ('login', 'secure', 'update'), URL shorteners, and IP addresses used as domains.
2. Content Analysis: hypothesize the page content. Would it have suspicious forms, iframes, or obfuscated JavaScript?
3. Visual Similarity: estimate a visual similarity score against a known legitimate site if applicable.

Respond with a single JSON object conforming to the declared response schema.
- If the URL is phishing, set 'isPhishing' to true and give a high confidence score (above 0.8). Detail the reasons in 'analysisDetails'.
- If the URL is safe, set 'isPhishing' to false and give a low confidence score (below 0.1).
- Every entry of 'analysisDetails' names its 'module', gives a 'reason', and lists the 'triggeredRules' it fired (possibly none).
- If you identify a typosquatted domain, put the likely legitimate site in 'suggestedLegitimateSite'. For example, for 'microsft-login.com' suggest 'microsoft.com'.
- Be realistic, simulating a real detection engine.`

func userPrompt(url string) string {
	return fmt.Sprintf("Analyze the following URL for phishing characteristics: %s", url)
}

// ResponseSchema is the structured output the oracle is asked to produce.
func ResponseSchema() *schemas.ResponseSchema {
	str := func() *schemas.ResponseSchema { return &schemas.ResponseSchema{Type: schemas.SchemaString} }
	num := func() *schemas.ResponseSchema { return &schemas.ResponseSchema{Type: schemas.SchemaNumber} }

	finding := &schemas.ResponseSchema{
		Type: schemas.SchemaObject,
		Properties: map[string]*schemas.ResponseSchema{
			"module":         str(),
			"reason":         str(),
			"triggeredRules": {Type: schemas.SchemaArray, Items: str()},
		},
		Required: []string{"module", "reason", "triggeredRules"},
	}

	return &schemas.ResponseSchema{
		Type: schemas.SchemaObject,
		Properties: map[string]*schemas.ResponseSchema{
			"url":                     str(),
			"isPhishing":              {Type: schemas.SchemaBoolean},
			"confidenceScore":         num(),
			"analysisDetails":         {Type: schemas.SchemaArray, Items: finding},
			"visualSimilarityScore":   num(),
			"suggestedLegitimateSite": str(),
		},
		Required: []string{"url", "isPhishing", "confidenceScore", "analysisDetails", "visualSimilarityScore"},
	}
}
