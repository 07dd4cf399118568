package indexer

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/matcher"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
)

// Engine is the search server: it owns the document store and runs queries,
// matches, removals and query batches against it.
//
// AddDocument and RemoveDocument are serialized against every read by the
// store lock. Callers that need a stable view across several calls (for
// example "count, then list") must not mutate in between.
type Engine struct {
	store   *index.Store
	pool    *parallel.Pool
	ranker  *ranker.Ranker
	matcher *matcher.Matcher
	batch   *executor.Executor
	logger  *slog.Logger
}

func NewEngine(cfg config.EngineConfig) (*Engine, error) {
	stopWords, err := tokenizer.NewStopWords(cfg.StopWords...)
	if err != nil {
		return nil, fmt.Errorf("building stop words: %w", err)
	}
	pool := parallel.NewPool(cfg.Workers)
	e := &Engine{
		store:   index.NewStore(stopWords, pool),
		pool:    pool,
		ranker:  ranker.New(pool),
		matcher: matcher.New(pool),
		logger:  slog.Default().With("component", "engine"),
	}
	e.batch = executor.New(e, pool)
	e.logger.Info("engine initialized",
		"stop_words", len(stopWords),
		"workers", pool.Workers(),
	)
	return e, nil
}

func (e *Engine) AddDocument(id int, text string, status index.DocumentStatus, ratings []int) error {
	if err := e.store.AddDocument(id, text, status, ratings); err != nil {
		e.logger.Debug("document rejected", "doc_id", id, "error", err)
		return fmt.Errorf("adding document %d: %w", id, err)
	}
	return nil
}

// FindTopDocuments ranks ACTUAL documents sequentially.
func (e *Engine) FindTopDocuments(raw string) ([]ranker.Document, error) {
	return e.FindTopDocumentsPolicy(parallel.Sequential, raw, ranker.DefaultPredicate())
}

// FindTopDocumentsByStatus ranks documents with the given status
// sequentially.
func (e *Engine) FindTopDocumentsByStatus(raw string, status index.DocumentStatus) ([]ranker.Document, error) {
	return e.FindTopDocumentsPolicy(parallel.Sequential, raw, ranker.ByStatus(status))
}

// FindTopDocumentsWith ranks documents accepted by predicate sequentially.
func (e *Engine) FindTopDocumentsWith(raw string, predicate ranker.Predicate) ([]ranker.Document, error) {
	return e.FindTopDocumentsPolicy(parallel.Sequential, raw, predicate)
}

// FindTopDocumentsPolicy parses raw and ranks it under policy. A nil
// predicate selects ACTUAL documents.
func (e *Engine) FindTopDocumentsPolicy(policy parallel.Policy, raw string, predicate ranker.Predicate) ([]ranker.Document, error) {
	q, err := parser.Parse(raw, e.store.StopWords())
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}
	return e.ranker.FindTopDocuments(policy, e.store, q, predicate), nil
}

func (e *Engine) MatchDocument(raw string, id int) ([]string, index.DocumentStatus, error) {
	return e.MatchDocumentPolicy(parallel.Sequential, raw, id)
}

func (e *Engine) MatchDocumentPolicy(policy parallel.Policy, raw string, id int) ([]string, index.DocumentStatus, error) {
	q, err := parser.Parse(raw, e.store.StopWords())
	if err != nil {
		return nil, index.StatusActual, fmt.Errorf("parsing query: %w", err)
	}
	words, status, err := e.matcher.MatchDocument(policy, e.store, q, id)
	if err != nil {
		return nil, index.StatusActual, fmt.Errorf("matching document %d: %w", id, err)
	}
	return words, status, nil
}

// RemoveDocument removes id sequentially. Unknown ids are ignored.
func (e *Engine) RemoveDocument(id int) {
	e.RemoveDocumentPolicy(parallel.Sequential, id)
}

// RemoveDocumentPolicy removes id under policy and reports whether it was
// indexed.
func (e *Engine) RemoveDocumentPolicy(policy parallel.Policy, id int) bool {
	return e.store.RemoveDocument(policy, id)
}

func (e *Engine) GetDocumentCount() int {
	return e.store.Size()
}

func (e *Engine) GetDocumentIdAt(i int) (int, error) {
	return e.store.IDAt(i)
}

// DocumentIDs yields ids in insertion order.
func (e *Engine) DocumentIDs() iter.Seq[int] {
	return e.store.IDs()
}

// WordFrequencies returns a copy of the term frequencies of id; empty for an
// unknown id.
func (e *Engine) WordFrequencies(id int) map[string]float64 {
	return e.store.WordFrequencies(id)
}

func (e *Engine) TermCount() int {
	return e.store.TermCount()
}

func (e *Engine) ProcessQueries(queries []string) ([][]ranker.Document, error) {
	return e.batch.ProcessQueries(queries)
}

func (e *Engine) ProcessQueriesJoined(queries []string) ([]ranker.Document, error) {
	return e.batch.ProcessQueriesJoined(queries)
}
