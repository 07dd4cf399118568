// Package ranker scores documents against a parsed query with TF-IDF and
// returns the best matches. Sequential and parallel execution produce the
// same documents in the same order.
package ranker

import (
	"cmp"
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
)

const (
	MaxResultDocumentCount = 5
	// RelevanceEpsilon is the distance below which two relevances are equal
	// and the rating decides the order.
	RelevanceEpsilon = 1e-6
)

type Document struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Predicate decides whether a document may collect relevance. Under
// parallel.Parallel it is called from several goroutines at once. It runs
// while the store read lock is held and must not call back into the engine
// or the store.
type Predicate func(id int, status index.DocumentStatus, rating int) bool

// ByStatus accepts documents with the given status.
func ByStatus(status index.DocumentStatus) Predicate {
	return func(_ int, docStatus index.DocumentStatus, _ int) bool {
		return docStatus == status
	}
}

// DefaultPredicate accepts ACTUAL documents.
func DefaultPredicate() Predicate {
	return ByStatus(index.StatusActual)
}

type Ranker struct {
	pool   *parallel.Pool
	logger *slog.Logger
}

func New(pool *parallel.Pool) *Ranker {
	if pool == nil {
		pool = parallel.NewPool(0)
	}
	return &Ranker{
		pool:   pool,
		logger: slog.Default().With("component", "ranker"),
	}
}

// FindTopDocuments scores every document containing a plus word of q and
// accepted by predicate, drops every document containing a minus word, and
// returns at most MaxResultDocumentCount documents by descending relevance.
func (r *Ranker) FindTopDocuments(policy parallel.Policy, store *index.Store, q parser.Query, predicate Predicate) []Document {
	if predicate == nil {
		predicate = DefaultPredicate()
	}
	var matched []Document
	store.Read(func(v index.View) {
		scores := r.accumulate(policy, v, q.Plus, predicate)
		veto := vetoSet(v, q.Minus)
		matched = collect(v, scores, veto)
	})
	candidates := len(matched)
	SortDocuments(matched)
	if len(matched) > MaxResultDocumentCount {
		matched = matched[:MaxResultDocumentCount]
	}
	r.logger.Debug("query ranked",
		"query", q.RawQuery,
		"mode", policy,
		"plus_terms", len(q.Plus),
		"minus_terms", len(q.Minus),
		"candidates", candidates,
		"results", len(matched),
	)
	return matched
}

// accumulate sums tf*idf per document. Each plus word gets its own partial
// map, filled by whichever worker owns the word; the partials are then added
// up on this goroutine in word order, so both policies perform the same
// floating-point additions in the same order.
func (r *Ranker) accumulate(policy parallel.Policy, v index.View, terms []string, predicate Predicate) map[int]float64 {
	partials := make([]map[int]float64, len(terms))
	r.pool.Partition(policy, len(terms), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			partials[i] = termScores(v, terms[i], predicate)
		}
	})
	scores := make(map[int]float64)
	for _, partial := range partials {
		for id, score := range partial {
			scores[id] += score
		}
	}
	return scores
}

func termScores(v index.View, term string, predicate Predicate) map[int]float64 {
	docs, ok := v.Postings(term)
	if !ok {
		return nil
	}
	idf := inverseDocumentFreq(v.DocumentCount(), len(docs))
	partial := make(map[int]float64, len(docs))
	for id, tf := range docs {
		rec, _ := v.Record(id)
		if predicate(id, rec.Status, rec.Rating) {
			partial[id] = tf * idf
		}
	}
	return partial
}

// inverseDocumentFreq requires docFreq > 0.
func inverseDocumentFreq(totalDocs, docFreq int) float64 {
	return math.Log(float64(totalDocs) / float64(docFreq))
}

func vetoSet(v index.View, minus []string) *roaring64.Bitmap {
	veto := roaring64.New()
	for _, term := range minus {
		docs, ok := v.Postings(term)
		if !ok {
			continue
		}
		for id := range docs {
			veto.Add(uint64(id))
		}
	}
	return veto
}

func collect(v index.View, scores map[int]float64, veto *roaring64.Bitmap) []Document {
	matched := make([]Document, 0, len(scores))
	for _, id := range slices.Sorted(maps.Keys(scores)) {
		if veto.Contains(uint64(id)) {
			continue
		}
		rec, _ := v.Record(id)
		matched = append(matched, Document{
			ID:        id,
			Relevance: scores[id],
			Rating:    rec.Rating,
		})
	}
	return matched
}

// SortDocuments orders docs by descending relevance; relevances closer than
// RelevanceEpsilon are ordered by descending rating. Equal documents keep
// their input order.
func SortDocuments(docs []Document) {
	slices.SortStableFunc(docs, compareDocuments)
}

func compareDocuments(a, b Document) int {
	if math.Abs(a.Relevance-b.Relevance) < RelevanceEpsilon {
		return cmp.Compare(b.Rating, a.Rating)
	}
	return cmp.Compare(b.Relevance, a.Relevance)
}
