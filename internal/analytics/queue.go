package analytics

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
)

const (
	// WindowSize is the number of recorded requests kept, one per minute of
	// a day.
	WindowSize = 1440
	// DayTransition is subtracted from WindowSize when comparing the tick
	// distance between the newest and the oldest record.
	DayTransition = 2
)

// QueryRecord is the outcome of one recorded request.
type QueryRecord struct {
	ResultCount int
	Tick        int
}

// Finder runs a query with an arbitrary predicate.
type Finder interface {
	FindTopDocumentsWith(raw string, predicate ranker.Predicate) ([]ranker.Document, error)
}

// RequestQueue keeps the most recent WindowSize request outcomes and counts
// how many of them returned no documents. Records are evicted oldest first.
type RequestQueue struct {
	mu          sync.Mutex
	records     []QueryRecord
	head        int
	nextTick    int
	zeroResults int
	finder      Finder
	gauge       prometheus.Gauge
	logger      *slog.Logger
}

// NewRequestQueue creates an empty queue. finder may be nil when only Record
// is used.
func NewRequestQueue(finder Finder) *RequestQueue {
	return &RequestQueue{
		records: make([]QueryRecord, 0, WindowSize),
		finder:  finder,
		logger:  slog.Default().With("component", "request-queue"),
	}
}

// SetGauge makes the queue publish its zero-result count to g after every
// Record.
func (q *RequestQueue) SetGauge(g prometheus.Gauge) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gauge = g
}

// Record appends the outcome of one request.
func (q *RequestQueue) Record(result []ranker.Document) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.evict()
	q.records = append(q.records, QueryRecord{
		ResultCount: len(result),
		Tick:        q.nextTick,
	})
	q.nextTick++
	if len(result) == 0 {
		q.zeroResults++
	}
	if q.gauge != nil {
		q.gauge.Set(float64(q.zeroResults))
	}
}

// evict pops records from the front while the newest retained record is
// more than WindowSize-DayTransition ticks ahead of the oldest. It runs
// before the next record is appended, which leaves exactly WindowSize
// records after the append.
func (q *RequestQueue) evict() {
	if q.head >= len(q.records) {
		return
	}
	newest := q.records[len(q.records)-1].Tick
	for q.head < len(q.records) {
		oldest := q.records[q.head]
		if newest-oldest.Tick <= WindowSize-DayTransition {
			break
		}
		if oldest.ResultCount == 0 {
			q.zeroResults--
		}
		q.head++
	}
	if q.head >= WindowSize {
		n := copy(q.records, q.records[q.head:])
		q.records = q.records[:n]
		q.head = 0
	}
}

// ZeroResultCount returns how many retained records had no documents.
func (q *RequestQueue) ZeroResultCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.zeroResults
}

// Len returns the number of retained records.
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records) - q.head
}

// AddFindRequest runs raw through the bound Finder and records the outcome.
// A query that fails to parse is not recorded.
func (q *RequestQueue) AddFindRequest(raw string, predicate ranker.Predicate) ([]ranker.Document, error) {
	docs, err := q.finder.FindTopDocumentsWith(raw, predicate)
	if err != nil {
		q.logger.Debug("request not recorded", "query", raw, "error", err)
		return nil, err
	}
	q.Record(docs)
	return docs, nil
}

// AddFindRequestByStatus is AddFindRequest with a status-equality predicate.
func (q *RequestQueue) AddFindRequestByStatus(raw string, status index.DocumentStatus) ([]ranker.Document, error) {
	return q.AddFindRequest(raw, ranker.ByStatus(status))
}

// AddFindRequestDefault is AddFindRequest for ACTUAL documents.
func (q *RequestQueue) AddFindRequestDefault(raw string) ([]ranker.Document, error) {
	return q.AddFindRequest(raw, ranker.DefaultPredicate())
}
