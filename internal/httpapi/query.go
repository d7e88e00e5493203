package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/explorer"
)

// Query is a parsed explorer request.
type Query struct {
	Criteria schemas.FilterCriteria
	Page     int
	PageSize int
}

// ParseQuery reads search, status, type (repeatable), min, max, page and
// page_size. Malformed values and page sizes above the configured maximum are
// rejected with explorer.ErrInvalidQuery instead of being clamped.
func ParseQuery(v url.Values, cfg config.ExplorerConfig) (Query, error) {
	q := Query{Page: 1, PageSize: cfg.DefaultPageSize}

	q.Criteria.SearchTerm = strings.TrimSpace(v.Get("search"))

	status, err := schemas.ParseStatusFilter(v.Get("status"))
	if err != nil {
		return Query{}, fmt.Errorf("%w: %v", explorer.ErrInvalidQuery, err)
	}
	q.Criteria.Status = status

	for _, t := range v["type"] {
		if t = strings.TrimSpace(t); t != "" {
			q.Criteria.TypeFilter = append(q.Criteria.TypeFilter, t)
		}
	}

	if v.Has("min") || v.Has("max") {
		rng := schemas.ConfidenceRange{Min: schemas.ConfidenceMin, Max: schemas.ConfidenceMax}
		if rng.Min, err = floatParam(v, "min", rng.Min); err != nil {
			return Query{}, err
		}
		if rng.Max, err = floatParam(v, "max", rng.Max); err != nil {
			return Query{}, err
		}
		q.Criteria.Confidence = &rng
	}

	if q.Page, err = intParam(v, "page", q.Page); err != nil {
		return Query{}, err
	}
	if q.PageSize, err = intParam(v, "page_size", q.PageSize); err != nil {
		return Query{}, err
	}
	if cfg.MaxPageSize > 0 && q.PageSize > cfg.MaxPageSize {
		return Query{}, fmt.Errorf("%w: page_size %d exceeds the maximum of %d", explorer.ErrInvalidQuery, q.PageSize, cfg.MaxPageSize)
	}

	if err := explorer.Validate(q.Criteria); err != nil {
		return Query{}, err
	}
	return q, nil
}

func floatParam(v url.Values, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", explorer.ErrInvalidQuery, key, raw)
	}
	return f, nil
}

func intParam(v url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", explorer.ErrInvalidQuery, key, raw)
	}
	return n, nil
}
