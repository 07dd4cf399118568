package analytics

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"
)

const (
	maxLatencySamples = 10000
	topQueryLimit     = 10
)

// AggregatedStats is the body of GET /api/v1/stats.
type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	FailedSearches    int64        `json:"failed_searches"`
	ZeroResultTotal   int64        `json:"zero_result_total"`
	ZeroResultWindow  int          `json:"zero_result_window"`
	WindowSize        int          `json:"window_size"`
	WindowLen         int          `json:"window_len"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps lifetime search statistics next to the sliding window of
// a RequestQueue. It does not record into the queue itself; the caller
// decides which searches count toward the window.
type Aggregator struct {
	mu          sync.Mutex
	total       int64
	failed      int64
	zeroResults int64
	latencies   []int64 // ring buffer of the last maxLatencySamples
	next        int
	queries     map[string]int64
	zeroQueries map[string]int64
	startTime   time.Time

	queue  *RequestQueue
	logger *slog.Logger
}

func NewAggregator(queue *RequestQueue) *Aggregator {
	return &Aggregator{
		latencies:   make([]int64, 0, 1024),
		queries:     make(map[string]int64),
		zeroQueries: make(map[string]int64),
		startTime:   time.Now(),
		queue:       queue,
		logger:      slog.Default().With("component", "analytics-aggregator"),
	}
}

func (a *Aggregator) Queue() *RequestQueue {
	return a.queue
}

// Track folds one search into the lifetime counters. Failed searches only
// count toward the totals.
func (a *Aggregator) Track(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	if event.Failed {
		a.failed++
		a.logger.Debug("failed search tracked", "query", event.Query, "request_id", event.RequestID)
		return
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
	a.queries[event.Query]++
	if event.Returned == 0 {
		a.zeroResults++
		a.zeroQueries[event.Query]++
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.Lock()
	stats := AggregatedStats{
		TotalSearches:     a.total,
		FailedSearches:    a.failed,
		ZeroResultTotal:   a.zeroResults,
		WindowSize:        WindowSize,
		TopQueries:        topN(a.queries, topQueryLimit),
		ZeroResultQueries: topN(a.zeroQueries, topQueryLimit),
	}
	sorted := slices.Clone(a.latencies)
	elapsed := time.Since(a.startTime).Minutes()
	a.mu.Unlock()

	if a.queue != nil {
		stats.ZeroResultWindow = a.queue.ZeroResultCount()
		stats.WindowLen = a.queue.Len()
	}
	if len(sorted) > 0 {
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

// percentile picks the nearest-rank value from an ascending slice.
func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[min(pct*len(sorted)/100, len(sorted)-1)]
}

// topN returns the n most frequent queries; equal counts are ordered by query
// text.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	slices.SortFunc(result, func(x, y QueryCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Query, y.Query)
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
