package analytics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func docs(n int) []ranker.Document {
	out := make([]ranker.Document, n)
	for i := range out {
		out[i] = ranker.Document{ID: i}
	}
	return out
}

func TestRequestQueueKeepsWindow(t *testing.T) {
	q := NewRequestQueue(nil)
	for range WindowSize - 1 {
		q.Record(nil)
	}
	assert.Equal(t, WindowSize-1, q.Len())
	assert.Equal(t, WindowSize-1, q.ZeroResultCount())

	q.Record(docs(1))
	assert.Equal(t, WindowSize, q.Len())
	assert.Equal(t, WindowSize-1, q.ZeroResultCount())

	for range 3 {
		q.Record(docs(2))
	}
	assert.Equal(t, WindowSize, q.Len())
	assert.Equal(t, WindowSize-4, q.ZeroResultCount())
}

func TestRequestQueueZeroCountMatchesRetained(t *testing.T) {
	q := NewRequestQueue(nil)
	var outcomes []int
	for i := range 5000 {
		n := 0
		if i%3 == 0 || i%7 == 0 {
			n = 1 + i%5
		}
		q.Record(docs(n))
		outcomes = append(outcomes, n)

		if i%97 == 0 || i == 4999 {
			start := max(0, len(outcomes)-WindowSize)
			want := 0
			for _, c := range outcomes[start:] {
				if c == 0 {
					want++
				}
			}
			require.Equal(t, want, q.ZeroResultCount(), "after %d records", i+1)
			require.Equal(t, len(outcomes)-start, q.Len())
		}
	}
}

func TestRequestQueueGauge(t *testing.T) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_zero_result_window"})
	q := NewRequestQueue(nil)
	q.SetGauge(g)
	q.Record(nil)
	q.Record(docs(3))
	q.Record(nil)
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	assert.Equal(t, 2.0, m.GetGauge().GetValue())
}

type fakeFinder struct {
	results map[string][]ranker.Document
}

func (f fakeFinder) FindTopDocumentsWith(raw string, predicate ranker.Predicate) ([]ranker.Document, error) {
	if raw == "--bad" {
		return nil, apperrors.Invalid("double minus")
	}
	var out []ranker.Document
	for _, d := range f.results[raw] {
		if predicate == nil || predicate(d.ID, index.DocumentStatus(d.ID%2), d.Rating) {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestAddFindRequest(t *testing.T) {
	f := fakeFinder{results: map[string][]ranker.Document{
		"cat": docs(4),
	}}
	q := NewRequestQueue(f)

	got, err := q.AddFindRequestDefault("cat")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = q.AddFindRequestByStatus("cat", index.StatusIrrelevant)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = q.AddFindRequest("dog", nil)
	require.NoError(t, err)

	_, err = q.AddFindRequestDefault("--bad")
	require.Error(t, err)

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 1, q.ZeroResultCount())
}
