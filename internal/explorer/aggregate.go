package explorer

import (
	"fmt"
	"time"

	"github.com/xkilldash9x/phishguard/api/schemas"
)

// AggregateByType counts records per resolved type. Rows appear in the order
// each type was first encountered so chart bars keep a stable position.
func AggregateByType(records []schemas.ThreatRecord) []schemas.TypeCount {
	index := make(map[string]int)
	out := make([]schemas.TypeCount, 0)
	for _, rec := range records {
		name := ResolveType(rec)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, schemas.TypeCount{Name: name})
		}
		out[i].Value++
	}
	return out
}

// AggregateByTimeBucket counts, for each caller supplied bucket in order, the
// records whose timestamp falls inside it. Buckets may overlap.
func AggregateByTimeBucket(records []schemas.ThreatRecord, buckets []schemas.TimeBucket) ([]schemas.BucketCount, error) {
	for _, b := range buckets {
		if b.End.Before(b.Start) {
			return nil, fmt.Errorf("%w: bucket %q ends before it starts", ErrInvalidQuery, b.Label)
		}
	}

	out := make([]schemas.BucketCount, len(buckets))
	for i, b := range buckets {
		out[i].Label = b.Label
		for _, rec := range records {
			if b.Contains(rec.Timestamp) {
				out[i].Value++
			}
		}
	}
	return out, nil
}

// RelativeBuckets builds one window per offset, each ending at now-offset and
// starting where the previous window ended. The first window spans the same
// gap as the second. Offsets must be given oldest first; the final window
// includes now itself and is labeled "Now" when its offset is zero.
//
//	RelativeBuckets(now, 3*time.Hour, 2*time.Hour, time.Hour, 30*time.Minute, 0)
//
// reproduces the dashboard's "3h ago", "2h ago", "1h ago", "30m ago", "Now" series.
func RelativeBuckets(now time.Time, offsets ...time.Duration) []schemas.TimeBucket {
	out := make([]schemas.TimeBucket, 0, len(offsets))
	for i, off := range offsets {
		end := now.Add(-off)
		var start time.Time
		switch {
		case i > 0:
			start = now.Add(-offsets[i-1])
		case len(offsets) > 1:
			start = end.Add(-(off - offsets[1]))
		default:
			start = end.Add(-off)
		}
		last := i == len(offsets)-1
		if last {
			end = end.Add(time.Nanosecond)
		}
		if end.Before(start) {
			end = start
		}
		out = append(out, schemas.TimeBucket{Label: relativeLabel(off, last), Start: start, End: end})
	}
	return out
}

// DefaultTimelineOffsets is the dashboard's threats-over-time series.
var DefaultTimelineOffsets = []time.Duration{3 * time.Hour, 2 * time.Hour, time.Hour, 30 * time.Minute, 0}

func relativeLabel(off time.Duration, last bool) string {
	switch {
	case last && off == 0:
		return "Now"
	case off >= time.Hour && off%time.Hour == 0:
		return fmt.Sprintf("%dh ago", int(off/time.Hour))
	case off >= time.Minute:
		return fmt.Sprintf("%dm ago", int(off/time.Minute))
	default:
		return fmt.Sprintf("%ds ago", int(off/time.Second))
	}
}

// Summarize counts the verdicts of a record sequence.
func Summarize(records []schemas.ThreatRecord) schemas.Summary {
	s := schemas.Summary{Total: len(records)}
	for _, rec := range records {
		if rec.IsPhishing {
			s.Phishing++
		}
	}
	s.Safe = s.Total - s.Phishing
	return s
}
