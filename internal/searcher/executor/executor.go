// Package executor evaluates batches of independent queries. Queries run
// concurrently, each writing only its own output slot, and results come back
// in input order.
package executor

import (
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
)

// Searcher runs one query with the default (ACTUAL status) predicate.
type Searcher interface {
	FindTopDocuments(raw string) ([]ranker.Document, error)
}

type Executor struct {
	searcher Searcher
	pool     *parallel.Pool
	logger   *slog.Logger
}

func New(searcher Searcher, pool *parallel.Pool) *Executor {
	if pool == nil {
		pool = parallel.NewPool(0)
	}
	return &Executor{
		searcher: searcher,
		pool:     pool,
		logger:   slog.Default().With("component", "batch-executor"),
	}
}

// ProcessQueries returns one result list per query, in the order of queries.
// If any query fails to parse, the first such error is returned.
func (e *Executor) ProcessQueries(queries []string) ([][]ranker.Document, error) {
	results := make([][]ranker.Document, len(queries))
	err := e.pool.ForEach(parallel.Parallel, len(queries), func(i int) error {
		docs, err := e.searcher.FindTopDocuments(queries[i])
		if err != nil {
			return fmt.Errorf("query %d %q: %w", i, queries[i], err)
		}
		results[i] = docs
		return nil
	})
	if err != nil {
		e.logger.Error("batch query failed", "queries", len(queries), "error", err)
		return nil, err
	}
	e.logger.Debug("batch processed", "queries", len(queries))
	return results, nil
}

// ProcessQueriesJoined flattens ProcessQueries: the documents of query i
// form one contiguous block ahead of those of query i+1.
func (e *Executor) ProcessQueriesJoined(queries []string) ([]ranker.Document, error) {
	perQuery, err := e.ProcessQueries(queries)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, docs := range perQuery {
		total += len(docs)
	}
	joined := make([]ranker.Document, 0, total)
	for _, docs := range perQuery {
		joined = append(joined, docs...)
	}
	return joined, nil
}
