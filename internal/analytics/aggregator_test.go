package analytics

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregatorStats(t *testing.T) {
	q := NewRequestQueue(nil)
	a := NewAggregator(q)
	assert.Same(t, q, a.Queue())

	for i := range 10 {
		a.Track(SearchEvent{Query: "cat", Returned: 3, LatencyMs: int64(i)})
	}
	a.Track(SearchEvent{Query: "dog", Returned: 0, LatencyMs: 100})
	a.Track(SearchEvent{Query: "dog", Returned: 0, LatencyMs: 100})
	a.Track(SearchEvent{Query: "--x", Failed: true})
	q.Record(nil)

	stats := a.Stats()
	assert.EqualValues(t, 13, stats.TotalSearches)
	assert.EqualValues(t, 1, stats.FailedSearches)
	assert.EqualValues(t, 2, stats.ZeroResultTotal)
	assert.Equal(t, 1, stats.ZeroResultWindow)
	assert.Equal(t, 1, stats.WindowLen)
	assert.Equal(t, WindowSize, stats.WindowSize)
	assert.Equal(t, []QueryCount{{Query: "cat", Count: 10}, {Query: "dog", Count: 2}}, stats.TopQueries)
	assert.Equal(t, []QueryCount{{Query: "dog", Count: 2}}, stats.ZeroResultQueries)
	assert.EqualValues(t, 100, stats.P99LatencyMs)
	assert.EqualValues(t, 6, stats.P50LatencyMs)
}

func TestAggregatorLogsFailedSearch(t *testing.T) {
	var buf bytes.Buffer
	a := NewAggregator(nil)
	a.logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a.Track(SearchEvent{Query: "cat", Returned: 1})
	assert.Empty(t, buf.String())

	a.Track(SearchEvent{Query: "--x", Failed: true, RequestID: "req-7"})
	assert.Contains(t, buf.String(), "failed search tracked")
	assert.Contains(t, buf.String(), "request_id=req-7")
}

func TestPercentile(t *testing.T) {
	assert.Zero(t, percentile(nil, 50))
	sorted := []int64{1, 2, 3, 4}
	assert.EqualValues(t, 3, percentile(sorted, 50))
	assert.EqualValues(t, 4, percentile(sorted, 100))
}
