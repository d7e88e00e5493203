package explorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/phishguard/api/schemas"
)

func TestAggregateByType_FirstOccurrenceOrder(t *testing.T) {
	t.Parallel()
	got := AggregateByType(fixtureRecords())
	want := []schemas.TypeCount{
		{Name: "Typosquatting", Value: 2},
		{Name: "Combosquatting", Value: 1},
		{Name: "Safe", Value: 2},
		{Name: "Homograph", Value: 1},
		{Name: "URL Shortener", Value: 1},
	}
	assert.Equal(t, want, got)
}

func TestAggregateByType_Empty(t *testing.T) {
	t.Parallel()
	got := AggregateByType(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateByType_OpenKeySet(t *testing.T) {
	t.Parallel()
	got := AggregateByType([]schemas.ThreatRecord{
		{IsPhishing: true},
		{IsPhishing: true, AnalysisDetails: []schemas.Finding{finding("Brand New Rule")}},
	})
	assert.Equal(t, []schemas.TypeCount{{Name: schemas.TypeUnknown, Value: 1}, {Name: "Brand New Rule", Value: 1}}, got)
}

func TestAggregateByTimeBucket(t *testing.T) {
	t.Parallel()
	buckets := []schemas.TimeBucket{
		{Label: "last hour", Start: fixtureNow.Add(-time.Hour), End: fixtureNow},
		{Label: "last day", Start: fixtureNow.Add(-24 * time.Hour), End: fixtureNow},
		{Label: "future", Start: fixtureNow, End: fixtureNow.Add(time.Hour)},
	}

	got, err := AggregateByTimeBucket(fixtureRecords(), buckets)
	require.NoError(t, err)
	assert.Equal(t, []schemas.BucketCount{
		{Label: "last hour", Value: 2},
		{Label: "last day", Value: 7},
		{Label: "future", Value: 0},
	}, got)
}

func TestAggregateByTimeBucket_RejectsInvertedBucket(t *testing.T) {
	t.Parallel()
	_, err := AggregateByTimeBucket(nil, []schemas.TimeBucket{{Label: "bad", Start: fixtureNow, End: fixtureNow.Add(-time.Second)}})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestRelativeBuckets_DashboardSeries(t *testing.T) {
	t.Parallel()
	buckets := RelativeBuckets(fixtureNow, DefaultTimelineOffsets...)
	require.Len(t, buckets, 5)

	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	assert.Equal(t, []string{"3h ago", "2h ago", "1h ago", "30m ago", "Now"}, labels)

	// Windows are contiguous.
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i-1].End.Equal(buckets[i].Start), "gap before %s", buckets[i].Label)
	}
	assert.True(t, buckets[0].Start.Equal(fixtureNow.Add(-4*time.Hour)))
	assert.True(t, buckets[4].Contains(fixtureNow), "now belongs to the last window")

	got, err := AggregateByTimeBucket(fixtureRecords(), buckets)
	require.NoError(t, err)
	// Starts are inclusive: the 2h-old record lands in "1h ago" next to the
	// 62m-old one, and the 3h-old record in "2h ago".
	assert.Equal(t, []schemas.BucketCount{
		{Label: "3h ago", Value: 0},
		{Label: "2h ago", Value: 1},
		{Label: "1h ago", Value: 2},
		{Label: "30m ago", Value: 0},
		{Label: "Now", Value: 2},
	}, got)
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, schemas.Summary{Total: 7, Phishing: 5, Safe: 2}, Summarize(fixtureRecords()))
	assert.Equal(t, schemas.Summary{}, Summarize(nil))
}
