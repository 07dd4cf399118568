// Package matcher reports which query words a single document contains.
package matcher

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

type Matcher struct {
	pool   *parallel.Pool
	logger *slog.Logger
}

func New(pool *parallel.Pool) *Matcher {
	if pool == nil {
		pool = parallel.NewPool(0)
	}
	return &Matcher{
		pool:   pool,
		logger: slog.Default().With("component", "matcher"),
	}
}

// MatchDocument returns the plus words of q found in document id, in the
// order of q.Plus, and the document's status. When the document contains
// any minus word the word list is empty. An unknown id is a lookup error.
func (m *Matcher) MatchDocument(policy parallel.Policy, store *index.Store, q parser.Query, id int) ([]string, index.DocumentStatus, error) {
	var (
		words  []string
		status index.DocumentStatus
		found  bool
	)
	store.Read(func(v index.View) {
		var rec index.DocumentRecord
		rec, found = v.Record(id)
		if !found {
			return
		}
		status = rec.Status
		terms, _ := v.Terms(id)
		for _, word := range q.Minus {
			if _, ok := terms[word]; ok {
				words = []string{}
				return
			}
		}
		words = m.matchPlus(policy, terms, q.Plus)
	})
	if !found {
		return nil, index.StatusActual, apperrors.NotFound("document id %d is not indexed", id)
	}
	m.logger.Debug("document matched",
		"doc_id", id,
		"mode", policy,
		"matched", len(words),
	)
	return words, status, nil
}

// matchPlus checks every plus word against terms. Workers record hits in
// their own slots of a shared slice, which is compacted afterwards.
func (m *Matcher) matchPlus(policy parallel.Policy, terms map[string]float64, plus []string) []string {
	hits := make([]bool, len(plus))
	m.pool.Partition(policy, len(plus), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			_, hits[i] = terms[plus[i]]
		}
	})
	words := make([]string, 0, len(plus))
	for i, hit := range hits {
		if hit {
			words = append(words, plus[i])
		}
	}
	return words
}
