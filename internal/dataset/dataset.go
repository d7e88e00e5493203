// Package dataset reads the labelled phishing CSV dataset into ThreatLog rows.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xkilldash9x/phishguard/api/schemas"
)

// LabelColumn holds 1 for phishing and 0 for legitimate.
const LabelColumn = "CLASS_LABEL"

// URLColumn is optional; rows without a URL get a synthetic one.
const URLColumn = "url"

// ErrMissingLabelColumn is returned when the header has no CLASS_LABEL column.
var ErrMissingLabelColumn = errors.New("dataset has no " + LabelColumn + " column")

// SyntheticURL names the placeholder URL of the i-th (0-based) data row.
func SyntheticURL(i int) string {
	return fmt.Sprintf("http://example-site-%d.com", i)
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]schemas.ThreatLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a header-led CSV. Every other column is ignored.
func Read(r io.Reader) ([]schemas.ThreatLog, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingLabelColumn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	labelIdx, urlIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case name == LabelColumn:
			labelIdx = i
		case strings.EqualFold(name, URLColumn):
			urlIdx = i
		}
	}
	if labelIdx < 0 {
		return nil, ErrMissingLabelColumn
	}

	var logs []schemas.ThreatLog
	for i := 0; ; i++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row %d: %w", i+1, err)
		}
		if labelIdx >= len(rec) {
			return nil, fmt.Errorf("dataset row %d has no %s value", i+1, LabelColumn)
		}
		phishing, err := parseLabel(rec[labelIdx])
		if err != nil {
			return nil, fmt.Errorf("dataset row %d: %w", i+1, err)
		}

		url := ""
		if urlIdx >= 0 && urlIdx < len(rec) {
			url = strings.TrimSpace(rec[urlIdx])
		}
		if url == "" {
			url = SyntheticURL(i)
		}
		logs = append(logs, schemas.ThreatLog{URL: url, IsPhishing: phishing})
	}
	return logs, nil
}

// parseLabel treats exactly 1 as phishing and any other number as legitimate.
func parseLabel(s string) (bool, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", LabelColumn, s)
	}
	return v == 1, nil
}
