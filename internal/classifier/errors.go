package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyURL rejects a blank URL before any oracle call is made.
	ErrEmptyURL = errors.New("url must not be empty")
	// ErrOracleUnavailable means the oracle could not be reached or refused the call.
	ErrOracleUnavailable = errors.New("analysis oracle unavailable")
	// ErrMalformedOracleResponse means the oracle answered with a payload that
	// does not satisfy the declared response schema.
	ErrMalformedOracleResponse = errors.New("malformed analysis oracle response")
)

// ClassificationError carries the URL and the failure kind of one Classify call.
// It matches its Kind and its Cause with errors.Is.
type ClassificationError struct {
	URL   string
	Kind  error
	Cause error
}

func (e *ClassificationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("classify %q: %v", e.URL, e.Kind)
	}
	return fmt.Sprintf("classify %q: %v: %v", e.URL, e.Kind, e.Cause)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *ClassificationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func unavailable(url string, cause error) error {
	return &ClassificationError{URL: url, Kind: ErrOracleUnavailable, Cause: cause}
}

func malformed(url string, cause error) error {
	return &ClassificationError{URL: url, Kind: ErrMalformedOracleResponse, Cause: cause}
}
