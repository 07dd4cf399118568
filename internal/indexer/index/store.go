package index

import (
	"iter"
	"log/slog"
	"maps"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Store owns every indexed document: the inverted index (term -> doc -> tf),
// its forward mirror (doc -> term -> tf), the per-document records and the
// insertion order of ids. Mutations hold the write lock for their whole
// duration, so readers never see a half-added or half-removed document.
type Store struct {
	mu        sync.RWMutex
	stopWords tokenizer.StopWords
	pool      *parallel.Pool
	postings  map[string]map[int]float64
	forward   map[int]map[string]float64
	records   map[int]DocumentRecord
	ids       []int
	logger    *slog.Logger
}

func NewStore(stopWords tokenizer.StopWords, pool *parallel.Pool) *Store {
	if stopWords == nil {
		stopWords = tokenizer.StopWords{}
	}
	if pool == nil {
		pool = parallel.NewPool(0)
	}
	return &Store{
		stopWords: stopWords,
		pool:      pool,
		postings:  make(map[string]map[int]float64),
		forward:   make(map[int]map[string]float64),
		records:   make(map[int]DocumentRecord),
		logger:    slog.Default().With("component", "document-store"),
	}
}

func (s *Store) StopWords() tokenizer.StopWords {
	return s.stopWords
}

// AddDocument indexes text under id. The id must be non-negative and unused
// and every word must be free of control characters; otherwise nothing is
// changed and a validation error is returned.
func (s *Store) AddDocument(id int, text string, status DocumentStatus, ratings []int) error {
	if id < 0 {
		return apperrors.Invalid("document id %d is negative", id)
	}
	words := make([]string, 0, 16)
	for word := range tokenizer.Split(text) {
		if !tokenizer.IsValidWord(word) {
			return apperrors.Invalid("word %q contains a control character", word)
		}
		if s.stopWords.Contains(word) {
			continue
		}
		words = append(words, word)
	}
	freqs := make(map[string]float64, len(words))
	if len(words) > 0 {
		inv := 1.0 / float64(len(words))
		for _, word := range words {
			freqs[word] += inv
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; exists {
		return apperrors.Exists("document id %d is already indexed", id)
	}
	for term, tf := range freqs {
		docs, ok := s.postings[term]
		if !ok {
			docs = make(map[int]float64)
			s.postings[term] = docs
		}
		docs[id] = tf
	}
	s.forward[id] = freqs
	s.records[id] = DocumentRecord{Rating: AverageRating(ratings), Status: status}
	s.ids = append(s.ids, id)
	s.logger.Debug("document indexed",
		"doc_id", id,
		"status", status,
		"word_count", len(words),
		"unique_terms", len(freqs),
	)
	return nil
}

// Size returns the number of indexed documents.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// IDAt returns the id of the i-th document in insertion order.
func (s *Store) IDAt(i int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.ids) {
		return 0, apperrors.OutOfRange("position %d outside [0, %d)", i, len(s.ids))
	}
	return s.ids[i], nil
}

// IDs yields document ids in insertion order. The order is captured when
// iteration starts.
func (s *Store) IDs() iter.Seq[int] {
	return func(yield func(int) bool) {
		s.mu.RLock()
		ids := make([]int, len(s.ids))
		copy(ids, s.ids)
		s.mu.RUnlock()
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

// Record returns the rating and status of id.
func (s *Store) Record(id int) (DocumentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// WordFrequencies returns a copy of the term frequencies of id, or an empty
// map when id is unknown.
func (s *Store) WordFrequencies(id int) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	terms, ok := s.forward[id]
	if !ok {
		return map[string]float64{}
	}
	return maps.Clone(terms)
}

// TermCount returns the number of distinct indexed terms.
func (s *Store) TermCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.postings)
}

// Read runs fn with a read-only view of the store while holding the read
// lock. The view must not be retained or written to after fn returns, and fn
// must not call other Store methods: a queued writer would deadlock it.
func (s *Store) Read(fn func(v View)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(View{s: s})
}

// View exposes the index internals to the ranker and matcher. Every map it
// returns is shared with the store and is read-only.
type View struct {
	s *Store
}

func (v View) DocumentCount() int {
	return len(v.s.records)
}

// Postings returns the doc -> tf map of term. ok is false when no document
// contains term.
func (v View) Postings(term string) (map[int]float64, bool) {
	docs, ok := v.s.postings[term]
	return docs, ok && len(docs) > 0
}

func (v View) Terms(id int) (map[string]float64, bool) {
	terms, ok := v.s.forward[id]
	return terms, ok
}

func (v View) Record(id int) (DocumentRecord, bool) {
	rec, ok := v.s.records[id]
	return rec, ok
}
