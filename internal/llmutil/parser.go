// internal/llmutil/parser.go
package llmutil

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSONObject is returned when a model answer contains no JSON object.
var ErrNoJSONObject = errors.New("no JSON object found in LLM response")

// jsonObjectRegex extracts a JSON object if the response is wrapped in markdown.
// \x60 is a backtick; Go raw strings cannot contain one.
var jsonObjectRegex = regexp.MustCompile("(?s)^\x60\x60\x60(?:json|JSON)?\\s*({.*})\\s*\x60\x60\x60$")

// ExtractJSONObject returns the JSON object text inside an LLM answer. Models
// asked for JSON still sometimes wrap it in a markdown fence or add a sentence
// around it; both are peeled off here. The result is not validated.
func ExtractJSONObject(response string) (string, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return "", ErrNoJSONObject
	}

	if strings.HasPrefix(response, "```") {
		if m := jsonObjectRegex.FindStringSubmatch(response); len(m) > 1 {
			return m[1], nil
		}
	}
	if strings.HasPrefix(response, "{") {
		return response, nil
	}

	first := strings.Index(response, "{")
	last := strings.LastIndex(response, "}")
	if first == -1 || last <= first {
		return "", ErrNoJSONObject
	}
	return response[first : last+1], nil
}

// Truncate shortens s to maxLen bytes for log and error messages.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
